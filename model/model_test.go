package model

import (
	"bytes"
	"encoding/json"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
	"math"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

// nearest mean of the scaled first feature
type means struct {
	Means []float64 `json:"means"`
	Scale float64   `json:"scale"`
	Width int       `json:"width"`
}

func (*means) Solver() string { return "means" }
func (m *means) Dim() int { return m.Width }

type meanSolver struct {
	fitErr   error
	nilModel bool
	extra    int // extra predicted ranks
	badRank  bool
}

func (s *meanSolver) Name() string { return "means" }

func (s *meanSolver) Fit(features [][]float64, ranks []int, classes int, params Params) (Handle, error) {
	m := &means{Means: make([]float64, classes), Scale: 1, Width: len(features[0])}
	if err := params.Apply(map[string]reflect.Value{"scale": reflect.ValueOf(&m.Scale)}); err != nil {
		return nil, err
	}
	if s.fitErr != nil {
		return nil, s.fitErr
	}
	if s.nilModel {
		return nil, nil
	}
	sum := make([]float64, classes)
	cnt := make([]float64, classes)
	for i, r := range ranks {
		sum[r] += features[i][0] * m.Scale
		cnt[r]++
	}
	for j := range sum {
		m.Means[j] = sum[j] / math.Max(cnt[j], 1)
	}
	return m, nil
}

func (s *meanSolver) Predict(h Handle, features [][]float64) ([]int, error) {
	m, ok := h.(*means)
	if !ok {
		return nil, xerrors.Errorf("wrong handle")
	}
	r := make([]int, len(features)+s.extra)
	for i, f := range features {
		best := math.Inf(1)
		for j, c := range m.Means {
			if d := math.Abs(f[0]*m.Scale - c); d < best {
				best, r[i] = d, j
			}
		}
		if s.badRank {
			r[i] = len(m.Means)
		}
	}
	return r, nil
}

func (s *meanSolver) Project(h Handle, features [][]float64) ([]float64, error) {
	r := make([]float64, len(features))
	for i, f := range features {
		r[i] = f[0]
	}
	return r, nil
}

func (s *meanSolver) Decode(data []byte) (Handle, error) {
	m := &means{}
	return m, json.Unmarshal(data, m)
}

var toy = Dataset{
	Features: [][]float64{{0}, {1}, {5}, {6}, {10}, {11}},
	Labels:   []int{10, 10, 20, 20, 30, 30},
}

func reason(t *testing.T, err error) Reason {
	r, ok := ReasonOf(err)
	assert.Assert(t, ok, "%v", err)
	return r
}

func Test_FitPredict(t *testing.T) {
	m, err := Fit(&meanSolver{}, toy, Params{"scale": 2})
	assert.NilError(t, err)
	assert.Equal(t, m.Solver(), "means")
	assert.Equal(t, m.Dim(), 1)
	assert.DeepEqual(t, m.Classes(), []int{10, 20, 30})
	assert.DeepEqual(t, m.Params(), Params{"scale": 2})
	assert.DeepEqual(t, m.LuckyPredict(toy.Features), toy.Labels)
	assert.DeepEqual(t, m.LuckyPredict([][]float64{{-100}, {100}}), []int{10, 30})

	labels, err := Predict(m, [][]float64{})
	assert.NilError(t, err)
	assert.Assert(t, labels != nil && len(labels) == 0)

	// accessors return copies
	m.Classes()[0] = 0
	m.Params()["scale"] = 0
	assert.DeepEqual(t, m.Classes(), []int{10, 20, 30})
	assert.Assert(t, m.Params()["scale"] == 2)

	scores, err := m.PredictScores([][]float64{{3}})
	assert.NilError(t, err)
	assert.DeepEqual(t, scores, []float64{3})
}

func Test_DeclaredClasses(t *testing.T) {
	ds := toy
	ds.Classes = []int{30, 10, 20, 40}
	m, err := Fit(&meanSolver{}, ds, nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, m.Classes(), []int{10, 20, 30, 40})

	ds.Classes = []int{10, 20}
	_, err = Fit(&meanSolver{}, ds, nil)
	assert.Assert(t, reason(t, err) == BadLabel)
	ds.Classes = []int{10, 10, 20, 30}
	_, err = Fit(&meanSolver{}, ds, nil)
	assert.Assert(t, reason(t, err) == BadLabel)
}

func Test_TrainingErrors(t *testing.T) {
	cases := []struct {
		ds     Dataset
		reason Reason
	}{
		{Dataset{}, EmptyDataset},
		{Dataset{Features: [][]float64{{1}, {2}}, Labels: []int{1}}, DimensionMismatch},
		{Dataset{Features: [][]float64{{1}, {2, 3}}, Labels: []int{1, 2}}, DimensionMismatch},
		{Dataset{Features: [][]float64{{}, {}}, Labels: []int{1, 2}}, DimensionMismatch},
		{Dataset{Features: [][]float64{{1}, {math.NaN()}}, Labels: []int{1, 2}}, BadInput},
		{Dataset{Features: [][]float64{{1}, {2}}, Labels: []int{1, 1}}, BadLabel},
	}
	for i, c := range cases {
		m, err := Fit(&meanSolver{}, c.ds, nil)
		assert.Assert(t, m == nil)
		assert.Assert(t, IsTrainingError(err), "case %d", i)
		assert.Assert(t, reason(t, err) == c.reason, "case %d: %v", i, err)
	}

	_, err := Fit(&meanSolver{}, toy, Params{"gamma": 1})
	assert.Assert(t, reason(t, err) == InvalidParams)
	_, err = Fit(nil, toy, nil)
	assert.Assert(t, reason(t, err) == SolverFailure)
	_, err = Fit(&meanSolver{nilModel: true}, toy, nil)
	assert.Assert(t, reason(t, err) == SolverFailure)

	cause := xerrors.New("out of memory")
	_, err = Fit(&meanSolver{fitErr: cause}, toy, nil)
	assert.Assert(t, reason(t, err) == SolverFailure)
	assert.Assert(t, xerrors.Is(err, cause))
	assert.ErrorContains(t, err, "out of memory")

	_, err = Fit(&meanSolver{fitErr: Trainingf(NotConverged, "slow")}, toy, nil)
	assert.Assert(t, reason(t, err) == NotConverged)
}

func Test_InferenceErrors(t *testing.T) {
	m := LuckyFit(&meanSolver{}, toy, nil)
	_, err := m.Predict([][]float64{{1, 2}})
	assert.Assert(t, IsInferenceError(err))
	assert.Assert(t, reason(t, err) == DimensionMismatch)
	_, err = m.Predict([][]float64{{math.Inf(1)}})
	assert.Assert(t, reason(t, err) == BadInput)

	var empty *Model
	_, err = empty.Predict([][]float64{{1}})
	assert.Assert(t, reason(t, err) == NotFitted)
	_, err = (&Model{}).Predict(nil)
	assert.Assert(t, reason(t, err) == NotFitted)

	m = LuckyFit(&meanSolver{extra: 1}, toy, nil)
	_, err = m.Predict([][]float64{{1}})
	assert.Assert(t, reason(t, err) == OutputMismatch)

	m = LuckyFit(&meanSolver{badRank: true}, toy, nil)
	_, err = m.Predict([][]float64{{1}})
	assert.Assert(t, reason(t, err) == SolverFailure)

	m = LuckyFit(&meanSolver{}, toy, nil)
	m.handle = &struct{ means }{}
	_, err = m.Predict([][]float64{{1}})
	assert.Assert(t, reason(t, err) == SolverFailure)
	assert.ErrorContains(t, err, "wrong handle")
}

func Test_ConcurrentPredict(t *testing.T) {
	m := LuckyFit(&meanSolver{}, toy, nil)
	h := m.Handle().(*means)
	before := append([]float64(nil), h.Means...)
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			labels, err := m.Predict(toy.Features)
			assert.Check(t, err == nil)
			assert.Check(t, reflect.DeepEqual(labels, toy.Labels))
		}()
	}
	wg.Wait()
	// every prediction shares the same fitted state
	assert.Assert(t, m.Handle() == Handle(h))
	assert.DeepEqual(t, h.Means, before)
}

func Test_Artifact(t *testing.T) {
	table := Table{"means": func() Solver { return &meanSolver{} }}
	m := LuckyFit(&meanSolver{}, toy, Params{"scale": 3})

	var bf bytes.Buffer
	assert.NilError(t, m.Memorize(&bf))
	r, err := Restore(table, &bf)
	assert.NilError(t, err)
	assert.DeepEqual(t, r.Classes(), m.Classes())
	assert.DeepEqual(t, r.LuckyPredict(toy.Features), toy.Labels)
	assert.DeepEqual(t, r.Params(), Params{"scale": 3})

	path := filepath.Join(t.TempDir(), "a", "means.xz")
	assert.NilError(t, m.Save(path))
	r, err = Load(table, path)
	assert.NilError(t, err)
	assert.Equal(t, r.Dim(), 1)

	bs, err := m.Encode()
	assert.NilError(t, err)
	_, err = Decode(Table{}, bs)
	assert.ErrorContains(t, err, "unknown solver `means`")
	_, err = Decode(table, []byte("garbage"))
	assert.ErrorContains(t, err, "xz")

	var empty *Model
	assert.Assert(t, reason(t, empty.Memorize(&bf)) == NotFitted)

	wide := *m
	wide.dim = 3
	bs, err = wide.Encode()
	assert.NilError(t, err)
	_, err = Decode(table, bs)
	assert.ErrorContains(t, err, "accepts 1 features, model declares 3")
}

func Test_Table(t *testing.T) {
	table := Table{"b": nil, "a": nil}
	assert.DeepEqual(t, table.Names(), []string{"a", "b"})
	_, err := table.New("c")
	assert.ErrorContains(t, err, "available: [a b]")
}

func Test_Errors(t *testing.T) {
	assert.Equal(t, NotConverged.String(), "not converged")
	assert.Equal(t, Reason(42).String(), "reason(42)")

	err := xerrors.Errorf("cv fold: %w", Trainingf(BadLabel, "label %d", 7))
	assert.Assert(t, IsTrainingError(err))
	assert.Assert(t, !IsInferenceError(err))
	assert.Assert(t, reason(t, err) == BadLabel)
	assert.ErrorContains(t, err, "training error (bad label): label 7")

	_, ok := ReasonOf(xerrors.New("plain"))
	assert.Assert(t, !ok)
}
