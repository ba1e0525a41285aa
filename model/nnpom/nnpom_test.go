package nnpom_test

import (
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/nnpom"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gotest.tools/assert"
	"math"
	"testing"
)

func steps() model.Dataset {
	ds := model.Dataset{}
	for i := 0; i < 30; i++ {
		ds.Features = append(ds.Features, []float64{float64(i) / 10})
		ds.Labels = append(ds.Labels, i/10+1)
	}
	return ds
}

func Test_Steps(t *testing.T) {
	ds := steps()
	m, err := model.Fit(nnpom.New(), ds, model.Params{"hiddenN": 5, "iter": 1000})
	assert.NilError(t, err)
	assert.DeepEqual(t, m.Classes(), []int{1, 2, 3})
	labels := m.LuckyPredict(ds.Features)
	wrong := 0
	for i, l := range labels {
		if l != ds.Labels[i] {
			wrong++
		}
	}
	assert.Assert(t, wrong <= 2, "%d errors: %v", wrong, labels)

	scores, err := m.PredictScores([][]float64{{0}, {2.9}})
	assert.NilError(t, err)
	assert.Assert(t, scores[0] < scores[1])
}

func Test_Probabilities(t *testing.T) {
	m := model.LuckyFit(nnpom.New(), steps(), model.Params{"hiddenN": 3, "iter": 50})
	net := m.Handle().(*nnpom.Network)
	assert.Assert(t, len(net.Thresholds) == 2)
	for _, x := range []float64{-5, 0, 1.5, 3, 10} {
		p := net.Probabilities([]float64{x})
		assert.Assert(t, len(p) == 3)
		for _, q := range p {
			assert.Assert(t, q >= 0)
		}
		assert.Assert(t, math.Abs(floats.Sum(p)-1) < 1e-12)
	}
}

func Test_Determinism(t *testing.T) {
	params := model.Params{"hiddenN": 4, "iter": 30, "seed": 42}
	a := model.LuckyFit(nnpom.New(), steps(), params)
	b := model.LuckyFit(nnpom.New(), steps(), params)
	assert.DeepEqual(t, a.Handle().(*nnpom.Network).Output, b.Handle().(*nnpom.Network).Output)
	q := [][]float64{{0.1}, {1.4}, {2.7}, {-3}}
	assert.DeepEqual(t, a.LuckyPredict(q), b.LuckyPredict(q))
	assert.DeepEqual(t, a.LuckyPredict(q), a.LuckyPredict(q))
}

func Test_Gradient(t *testing.T) {
	x := [][]float64{{-1, 0.5}, {0, 0.1}, {0.3, -0.2}, {1, 1}, {2, -1}}
	size, f, g := nnpom.Objective(x, []int{0, 0, 1, 2, 3}, 4, 3, 0.1)
	assert.Assert(t, size == 3*3+3+3)
	w := make([]float64, size)
	for i := range w {
		w[i] = math.Sin(float64(i+1)) / 2
	}
	want := fd.Gradient(nil, f, w, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	got := make([]float64, size)
	g(got, w)
	for i := range w {
		assert.Assert(t, math.Abs(got[i]-want[i]) < 1e-5*math.Max(1, math.Abs(want[i])), "%d: %v != %v", i, got[i], want[i])
	}
}

func Test_InvalidParams(t *testing.T) {
	for _, p := range []model.Params{
		{"hiddenN": 0},
		{"hiddenN": 2.5},
		{"epsilonInit": 0},
		{"lambda": -1},
		{"iter": 0},
		{"C": 1},
	} {
		_, err := model.Fit(nnpom.New(), steps(), p)
		r, ok := model.ReasonOf(err)
		assert.Assert(t, ok && r == model.InvalidParams, "%v: %v", p, err)
	}
}

func Test_Decode(t *testing.T) {
	m := model.LuckyFit(nnpom.New(), steps(), model.Params{"hiddenN": 3, "iter": 40})
	bs, err := m.Encode()
	assert.NilError(t, err)
	r, err := model.Decode(model.Table{nnpom.Name: func() model.Solver { return nnpom.New() }}, bs)
	assert.NilError(t, err)
	assert.Equal(t, r.Solver(), "nnpom")
	q := [][]float64{{0.4}, {1.1}, {2.2}}
	assert.DeepEqual(t, r.LuckyPredict(q), m.LuckyPredict(q))

	_, err = nnpom.New().Decode([]byte(`{"hidden":[[1,2]],"output":[1],"thresholds":[1,0]}`))
	assert.ErrorContains(t, err, "not ordered")
	_, err = nnpom.New().Decode([]byte(`{"scaler":{"mean":[0,0],"scale":[1,1]},"hidden":[[1,2]],"output":[1],"thresholds":[0]}`))
	assert.ErrorContains(t, err, "scaler does not match 1 features")
}
