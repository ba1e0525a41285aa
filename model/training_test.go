package model

import (
	"gotest.tools/assert"
	"math"
	"strings"
	"testing"
)

func Test_Training(t *testing.T) {
	test := Dataset{Features: [][]float64{{0.5}, {5.5}, {7}}, Labels: []int{10, 20, 30}}
	var msg string
	r, err := Training{
		Metrics: []string{"ccr", "MAE"},
		Verbose: func(s string) { msg = s },
	}.Run(&meanSolver{}, toy, &test, nil)
	assert.NilError(t, err)
	assert.Assert(t, r.Train["ccr"] == 1)
	assert.Assert(t, r.Train["mae"] == 0)
	assert.Assert(t, math.Abs(r.Test["ccr"]-2.0/3) < 1e-12)
	assert.Assert(t, math.Abs(r.Test["mae"]-10.0/3) < 1e-12)
	assert.Assert(t, r.Score == r.Test["ccr"])
	assert.Assert(t, r.FitTime > 0)
	assert.Assert(t, strings.HasPrefix(msg, "[means] fit:"), msg)

	r, err = Training{Metrics: []string{"ccr"}, Score: "mze"}.Run(&meanSolver{}, toy, nil, nil)
	assert.NilError(t, err)
	assert.Assert(t, math.IsNaN(r.Test["ccr"]))
	assert.Assert(t, r.Score == 0)

	_, err = Training{Metrics: []string{"auc"}}.Run(&meanSolver{}, toy, nil, nil)
	assert.ErrorContains(t, err, "no metric named `auc`")
}

func Test_Scaler(t *testing.T) {
	sc := FitScaler([][]float64{{1, 5}, {3, 5}})
	assert.DeepEqual(t, sc.Mean, []float64{2, 5})
	assert.Assert(t, math.Abs(sc.Scale[0]-math.Sqrt2) < 1e-12)
	assert.Assert(t, sc.Scale[1] == 1)
	r := sc.Transform([]float64{2 + math.Sqrt2, 6})
	assert.Assert(t, math.Abs(r[0]-1) < 1e-12)
	assert.Assert(t, r[1] == 1)
	assert.Assert(t, len(sc.TransformAll([][]float64{{1, 1}, {2, 2}})) == 2)
}

func Test_Subset(t *testing.T) {
	ds := toy
	ds.Classes = []int{10, 20, 30}
	s := ds.Subset([]int{4, 0})
	assert.DeepEqual(t, s.Labels, []int{30, 10})
	assert.DeepEqual(t, s.Features, [][]float64{{10}, {0}})
	assert.DeepEqual(t, s.ClassSet(), []int{10, 20, 30})
	assert.Assert(t, s.Len() == 2)
	assert.DeepEqual(t, Distinct([]int{3, 1, 3, 2}), []int{1, 2, 3})
}
