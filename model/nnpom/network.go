package nnpom

import (
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"sort"
)

/*
Network is a fitted nnpom state
*/
type Network struct {
	Config     Config        `json:"config"`
	Scaler     *model.Scaler `json:"scaler,omitempty"`
	Hidden     [][]float64   `json:"hidden"` // bias first
	Output     []float64     `json:"output"`
	Thresholds []float64     `json:"thresholds"`
}

func (n *Network) Solver() string {
	return Name
}

/*
Project calculates the network output
*/
func (n *Network) Project(row []float64) float64 {
	if n.Scaler != nil {
		row = n.Scaler.Transform(row)
	}
	p := 0.0
	for k, w := range n.Hidden {
		p += n.Output[k] * sigmoid(w[0]+floats.Dot(w[1:], row))
	}
	return p
}

/*
Probabilities returns the probability of every rank
*/
func (n *Network) Probabilities(row []float64) []float64 {
	p := n.Project(row)
	r := make([]float64, len(n.Thresholds)+1)
	lower := 0.0
	for j, t := range n.Thresholds {
		upper := sigmoid(t - p)
		r[j] = upper - lower
		lower = upper
	}
	r[len(n.Thresholds)] = 1 - lower
	return r
}

/*
Dim returns the width of accepted vectors
*/
func (n *Network) Dim() int {
	if len(n.Hidden) == 0 {
		return 0
	}
	return len(n.Hidden[0]) - 1
}

func (n *Network) check() error {
	if len(n.Hidden) == 0 || len(n.Hidden) != len(n.Output) {
		return xerrors.Errorf("nnpom network has %d hidden units and %d output weights", len(n.Hidden), len(n.Output))
	}
	for _, w := range n.Hidden {
		if len(w) != len(n.Hidden[0]) || len(w) < 2 {
			return xerrors.Errorf("nnpom network hidden weights are ragged")
		}
	}
	if dim := n.Dim(); n.Scaler != nil && (len(n.Scaler.Mean) != dim || len(n.Scaler.Scale) != dim) {
		return xerrors.Errorf("nnpom network scaler does not match %d features", dim)
	}
	if len(n.Thresholds) == 0 || !sort.Float64sAreSorted(n.Thresholds) {
		return xerrors.Errorf("nnpom network thresholds are missing or not ordered")
	}
	return nil
}
