package model

import (
	"go-ml.dev/pkg/ordinal/fu"
	"golang.org/x/xerrors"
	"sort"
)

/*
Handle is an opaque fitted state of a solver.
It must be serializable to JSON and must not be changed after Fit returns
*/
type Handle interface {
	// Solver returns name of the solver produced the handle
	Solver() string
}

/*
Solver is a numerical engine fitting ordinal regression models.
Ranks are zero based positions in the ordered class list,
the boundary maps them back to class values
*/
type Solver interface {
	Name() string
	// Fit trains a handle, features and ranks are read only
	Fit(features [][]float64, ranks []int, classes int, params Params) (Handle, error)
	// Predict returns one rank per feature vector, the handle is read only
	Predict(h Handle, features [][]float64) ([]int, error)
	// Decode restores handle from its JSON form
	Decode(data []byte) (Handle, error)
}

/*
Dimensional is implemented by handles knowing the width of the vectors they accept,
zero means the width is unknown
*/
type Dimensional interface {
	Dim() int
}

/*
Projector is implemented by threshold solvers exposing the latent projection
*/
type Projector interface {
	Project(h Handle, features [][]float64) ([]float64, error)
}

/*
Table maps solver names to constructors
*/
type Table map[string]func() Solver

/*
New creates solver by name
*/
func (t Table) New(name string) (Solver, error) {
	f, ok := t[name]
	if !ok {
		return nil, xerrors.Errorf("unknown solver `%v`, available: %v", name, t.Names())
	}
	return f(), nil
}

/*
Names returns sorted solver names
*/
func (t Table) Names() []string {
	r := make([]string, 0, len(t))
	for k := range t {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
Model is an immutable fitted model
*/
type Model struct {
	solver  Solver
	handle  Handle
	dim     int
	classes []int
	params  Params
}

func (m *Model) Solver() string {
	return m.solver.Name()
}

/*
Dim returns count of features the model expects
*/
func (m *Model) Dim() int {
	return m.dim
}

/*
Classes returns ordered class values
*/
func (m *Model) Classes() []int {
	return append([]int(nil), m.classes...)
}

/*
Params returns hyper-parameters the model was fitted with
*/
func (m *Model) Params() Params {
	return m.params.Copy()
}

/*
Handle returns the fitted solver state, it is shared by all predictions and must be treated as read only
*/
func (m *Model) Handle() Handle {
	return m.handle
}

/*
Fit trains a new model on the dataset, it returns a model or TrainingError, never a partial model
*/
func Fit(solver Solver, ds Dataset, params Params) (*Model, error) {
	if solver == nil {
		return nil, Trainingf(SolverFailure, "no solver")
	}
	prep, err := ds.prepare()
	if err != nil {
		return nil, err
	}
	params = params.Copy()
	h, err := solver.Fit(ds.Features, prep.ranks, len(prep.classes), params)
	if err != nil {
		if IsTrainingError(err) {
			return nil, err
		}
		return nil, Trainingf(SolverFailure, "%v: %w", solver.Name(), err)
	}
	if h == nil {
		return nil, Trainingf(SolverFailure, "%v returned no model", solver.Name())
	}
	return &Model{
		solver:  solver,
		handle:  h,
		dim:     prep.dim,
		classes: prep.classes,
		params:  params,
	}, nil
}

/*
LuckyFit trains a new model and panics on error
*/
func LuckyFit(solver Solver, ds Dataset, params Params) *Model {
	m, err := Fit(solver, ds, params)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) check(query [][]float64) error {
	if m == nil || m.solver == nil || m.handle == nil {
		return Inferencef(NotFitted, "model is not fitted")
	}
	for i, row := range query {
		if len(row) != m.dim {
			return Inferencef(DimensionMismatch, "query vector %d has %d features, model expects %d", i, len(row), m.dim)
		}
		if !fu.Finite(row) {
			return Inferencef(BadInput, "query vector %d has not finite value", i)
		}
	}
	return nil
}

/*
Predict returns one label per query vector preserving order
*/
func Predict(m *Model, query [][]float64) ([]int, error) {
	return m.Predict(query)
}

func (m *Model) Predict(query [][]float64) ([]int, error) {
	if err := m.check(query); err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return []int{}, nil
	}
	ranks, err := m.solver.Predict(m.handle, query)
	if err != nil {
		if IsInferenceError(err) {
			return nil, err
		}
		return nil, Inferencef(SolverFailure, "%v: %w", m.solver.Name(), err)
	}
	if len(ranks) != len(query) {
		return nil, Inferencef(OutputMismatch, "%v returned %d labels for %d vectors", m.solver.Name(), len(ranks), len(query))
	}
	labels := make([]int, len(ranks))
	for i, r := range ranks {
		if r < 0 || r >= len(m.classes) {
			return nil, Inferencef(SolverFailure, "%v returned rank %d out of %d classes", m.solver.Name(), r, len(m.classes))
		}
		labels[i] = m.classes[r]
	}
	return labels, nil
}

/*
LuckyPredict predicts labels and panics on error
*/
func (m *Model) LuckyPredict(query [][]float64) []int {
	labels, err := m.Predict(query)
	if err != nil {
		panic(err)
	}
	return labels
}

/*
PredictScores returns the latent projection of threshold solvers
*/
func (m *Model) PredictScores(query [][]float64) ([]float64, error) {
	if err := m.check(query); err != nil {
		return nil, err
	}
	p, ok := m.solver.(Projector)
	if !ok {
		return nil, Inferencef(SolverFailure, "%v does not expose projections", m.solver.Name())
	}
	if len(query) == 0 {
		return []float64{}, nil
	}
	scores, err := p.Project(m.handle, query)
	if err != nil {
		return nil, Inferencef(SolverFailure, "%v: %w", m.solver.Name(), err)
	}
	if len(scores) != len(query) {
		return nil, Inferencef(OutputMismatch, "%v returned %d scores for %d vectors", m.solver.Name(), len(scores), len(query))
	}
	return scores, nil
}
