package model

import (
	"bytes"
	"encoding/json"
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/ordinal/fu"
	"golang.org/x/xerrors"
	"io"
	"os"
	"path/filepath"
)

type envelope struct {
	Solver  string          `json:"solver"`
	Dim     int             `json:"dim"`
	Classes []int           `json:"classes"`
	Params  Params          `json:"params"`
	Handle  json.RawMessage `json:"handle"`
}

/*
Memorize writes xz compressed model artifact
*/
func (m *Model) Memorize(w io.Writer) error {
	if m == nil || m.handle == nil {
		return Inferencef(NotFitted, "model is not fitted")
	}
	h, err := json.Marshal(m.handle)
	if err != nil {
		return xerrors.Errorf("failed to encode %v handle: %w", m.solver.Name(), err)
	}
	e := envelope{
		Solver:  m.solver.Name(),
		Dim:     m.dim,
		Classes: m.classes,
		Params:  m.params,
		Handle:  h,
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return xerrors.Errorf("failed to create xz writer: %w", err)
	}
	if err = json.NewEncoder(xw).Encode(&e); err != nil {
		xw.Close()
		return xerrors.Errorf("failed to write model: %w", err)
	}
	if err = xw.Close(); err != nil {
		return xerrors.Errorf("failed to finish xz stream: %w", err)
	}
	return nil
}

/*
Encode returns model artifact bytes
*/
func (m *Model) Encode() ([]byte, error) {
	var bf bytes.Buffer
	if err := m.Memorize(&bf); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

/*
Restore reads model artifact, the solver is created from the table by its name
*/
func Restore(t Table, r io.Reader) (*Model, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, xerrors.Errorf("failed to open xz stream: %w", err)
	}
	var e envelope
	if err = json.NewDecoder(xr).Decode(&e); err != nil {
		return nil, xerrors.Errorf("failed to read model: %w", err)
	}
	solver, err := t.New(e.Solver)
	if err != nil {
		return nil, err
	}
	h, err := solver.Decode(e.Handle)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %v handle: %w", e.Solver, err)
	}
	if e.Dim <= 0 || len(e.Classes) < 2 {
		return nil, xerrors.Errorf("corrupted model: dim %d, classes %v", e.Dim, e.Classes)
	}
	if d, ok := h.(Dimensional); ok && d.Dim() != 0 && d.Dim() != e.Dim {
		return nil, xerrors.Errorf("corrupted model: %v handle accepts %d features, model declares %d", e.Solver, d.Dim(), e.Dim)
	}
	return &Model{solver: solver, handle: h, dim: e.Dim, classes: e.Classes, params: e.Params}, nil
}

/*
Decode restores model from artifact bytes
*/
func Decode(t Table, data []byte) (*Model, error) {
	return Restore(t, bytes.NewReader(data))
}

/*
Save writes model artifact into file, relative paths are resolved by fu.ModelPath
*/
func (m *Model) Save(path string) (err error) {
	path = fu.ModelPath(path)
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return xerrors.Errorf("failed to create model directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("failed to create model file: %w", err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = xerrors.Errorf("failed to close model file: %w", e)
		}
	}()
	return m.Memorize(f)
}

/*
Load reads model artifact from file
*/
func Load(t Table, path string) (*Model, error) {
	f, err := os.Open(fu.ModelPath(path))
	if err != nil {
		return nil, xerrors.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()
	return Restore(t, f)
}
