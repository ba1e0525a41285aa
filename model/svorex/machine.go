package svorex

import (
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"sort"
)

/*
Machine is a fitted svorex state
*/
type Machine struct {
	Config     Config        `json:"config"`
	Scaler     *model.Scaler `json:"scaler,omitempty"`
	Vectors    [][]float64   `json:"vectors"`
	Beta       []float64     `json:"beta"`
	Thresholds []float64     `json:"thresholds"` // sorted
}

func (m *Machine) Solver() string {
	return Name
}

/*
Project calculates the latent function value
*/
func (m *Machine) Project(row []float64) float64 {
	if m.Scaler != nil {
		row = m.Scaler.Transform(row)
	}
	f := 0.0
	for i, v := range m.Vectors {
		f += m.Beta[i] * m.Config.Kernel.Eval(v, row, m.Config.Kappa, m.Config.Degree)
	}
	return f
}

/*
Rank returns count of thresholds below the latent value
*/
func (m *Machine) Rank(f float64) int {
	return sort.SearchFloat64s(m.Thresholds, f)
}

/*
Dim returns the width of accepted vectors, zero if the machine has neither support vectors nor scaler
*/
func (m *Machine) Dim() int {
	if len(m.Vectors) > 0 {
		return len(m.Vectors[0])
	}
	if m.Scaler != nil {
		return len(m.Scaler.Mean)
	}
	return 0
}

func (m *Machine) check() error {
	if len(m.Vectors) != len(m.Beta) {
		return xerrors.Errorf("svorex machine has %d vectors and %d coefficients", len(m.Vectors), len(m.Beta))
	}
	dim := m.Dim()
	for i, v := range m.Vectors {
		if len(v) != dim || dim == 0 {
			return xerrors.Errorf("svorex machine vector %d has %d features, expected %d", i, len(v), dim)
		}
	}
	if m.Scaler != nil && (len(m.Scaler.Mean) != dim || len(m.Scaler.Scale) != dim) {
		return xerrors.Errorf("svorex machine scaler does not match %d features", dim)
	}
	if len(m.Thresholds) == 0 {
		return xerrors.Errorf("svorex machine has no thresholds")
	}
	if !sort.Float64sAreSorted(m.Thresholds) {
		return xerrors.Errorf("svorex machine thresholds are not ordered")
	}
	return nil
}
