package nnpom

func Objective(x [][]float64, ranks []int, classes, hidden int, lambda float64) (size int, f func([]float64) float64, g func([]float64, []float64)) {
	o := newObjective(x, ranks, classes, hidden, lambda)
	return o.size(), o.Func, o.Grad
}
