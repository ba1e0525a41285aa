package metrics

import (
	"gotest.tools/assert"
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func Test_Errors(t *testing.T) {
	yTrue := []int{1, 1, 2, 2, 3, 3}
	yPred := []int{1, 2, 2, 2, 3, 1}
	assert.Assert(t, near(CCR(yTrue, yPred), 4.0/6))
	assert.Assert(t, near(MZE(yTrue, yPred), 2.0/6))
	assert.Assert(t, near(MAE(yTrue, yPred), 0.5))
	assert.Assert(t, near(AMAE(yTrue, yPred), 0.5))
	assert.Assert(t, near(MMAE(yTrue, yPred), 1))
}

func Test_Correlations(t *testing.T) {
	y := []int{1, 2, 3, 3, 4}
	assert.Assert(t, near(Tkendall(y, y), 1))
	assert.Assert(t, near(Spearman(y, y), 1))
	assert.Assert(t, near(Wkappa(y, y), 1))

	rev := []int{3, 2, 1}
	asc := []int{1, 2, 3}
	assert.Assert(t, near(Tkendall(asc, rev), -1))
	assert.Assert(t, near(Spearman(asc, rev), -1))
	assert.Assert(t, near(Wkappa(asc, rev), -1))

	assert.Assert(t, Spearman(asc, []int{2, 2, 2}) == 0)
	assert.Assert(t, Tkendall(asc, []int{2, 2, 2}) == 0)
}

func Test_Table(t *testing.T) {
	m, err := Get(" CCR ")
	assert.NilError(t, err)
	assert.Assert(t, near(m([]int{1, 2}, []int{1, 1}), 0.5))
	_, err = Get("nope")
	assert.ErrorContains(t, err, "no metric named `nope`")
	assert.Assert(t, GreaterIsBetter("ccr"))
	assert.Assert(t, !GreaterIsBetter("MAE"))
	assert.Assert(t, len(Names()) == 8)

	r, err := Evaluate([]string{"ccr", "Mae"}, []int{1, 2, 3}, []int{1, 2, 2})
	assert.NilError(t, err)
	assert.Assert(t, near(r["ccr"], 2.0/3))
	assert.Assert(t, near(r["mae"], 1.0/3))
}

func Test_LengthMismatch(t *testing.T) {
	defer func() {
		assert.Assert(t, recover() != nil)
	}()
	CCR([]int{1}, []int{1, 2})
}
