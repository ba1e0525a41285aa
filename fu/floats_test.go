package fu

import (
	"gotest.tools/assert"
	"math"
	"path/filepath"
	"testing"
)

func Test_Indexes(t *testing.T) {
	assert.Assert(t, Indmaxd([]float64{1, 3, 3, 2}) == 1)
	assert.Assert(t, Indmaxd(nil) == -1)
	assert.Assert(t, Fnzi(0, 0, 3, 4) == 3)
	assert.Assert(t, Maxi(3, 1, 7) == 7)
}

func Test_Finite(t *testing.T) {
	assert.Assert(t, Finite([]float64{1, 2}))
	assert.Assert(t, !Finite([]float64{1, math.NaN()}))
	assert.Assert(t, !Finite([]float64{math.Inf(-1)}))
}

func Test_Flatnr(t *testing.T) {
	r := Flatnr([][]float64{{1, 2}, {3}, {4, 5}})
	assert.DeepEqual(t, r, []float64{1, 2, 3, 4, 5})
	a := [][]float64{{1, 2}}
	b := Copyr(a)
	b[0][0] = 9
	assert.Assert(t, a[0][0] == 1)
}

func Test_ModelPath(t *testing.T) {
	assert.Assert(t, ModelPath("/tmp/x.xz") == "/tmp/x.xz")
	p := ModelPath("x.xz")
	assert.Assert(t, filepath.IsAbs(p) || filepath.Base(p) == "x.xz")
	assert.Assert(t, filepath.Base(p) == "x.xz")
}

func Test_Fnz(t *testing.T) {
	assert.Assert(t, Fnzi(0, 0, 3, 4) == 3)
	assert.Assert(t, Fnzs("", "  ", "ccr") == "ccr")
	assert.Assert(t, Fnzs() == "")
}
