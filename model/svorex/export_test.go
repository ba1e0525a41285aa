package svorex

import "gonum.org/v1/gonum/mat"

func Objective(features [][]float64, ranks []int, classes int, cfg Config) (func([]float64) float64, func([]float64, []float64)) {
	n := len(features)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, cfg.Kernel.Eval(features[i], features[j], cfg.Kappa, cfg.Degree))
		}
	}
	o := &objective{k: k, ranks: ranks, c: cfg.C, n: n, nb: classes - 1}
	return o.Func, o.Grad
}
