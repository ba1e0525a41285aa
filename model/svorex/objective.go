package svorex

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// x = [beta_1..beta_n, b_1..b_nb]
type objective struct {
	k     *mat.SymDense
	ranks []int
	c     float64
	n, nb int
}

func (o *objective) latent(x []float64) []float64 {
	f := mat.NewVecDense(o.n, nil)
	f.MulVec(o.k, mat.NewVecDense(o.n, x[:o.n]))
	return f.RawVector().Data
}

// s_ij is -1 when the sample is at or below threshold j
func side(rank, j int) float64 {
	if rank <= j {
		return -1
	}
	return 1
}

func (o *objective) Func(x []float64) float64 {
	f := o.latent(x)
	v := 0.5 * floats.Dot(x[:o.n], f)
	b := x[o.n:]
	for i, fi := range f {
		for j, bj := range b {
			if h := 1 - side(o.ranks[i], j)*(fi-bj); h > 0 {
				v += o.c * h * h
			}
		}
	}
	return v
}

func (o *objective) Grad(grad, x []float64) {
	f := o.latent(x)
	b := x[o.n:]
	g := make([]float64, o.n)
	for j := range b {
		grad[o.n+j] = 0
	}
	for i, fi := range f {
		for j, bj := range b {
			s := side(o.ranks[i], j)
			if h := 1 - s*(fi-bj); h > 0 {
				g[i] -= 2 * o.c * s * h
				grad[o.n+j] += 2 * o.c * s * h
			}
		}
	}
	// d/dbeta = K beta + K g
	floats.Add(g, x[:o.n])
	gb := mat.NewVecDense(o.n, grad[:o.n])
	gb.MulVec(o.k, mat.NewVecDense(o.n, g))
}
