package svorex

import (
	"go-ml.dev/pkg/ordinal/fu"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

// halvings of the step before the line search gives up
const maxHalvings = 40

/*
active marks hinge terms with a positive loss, a[i*nb+j] is the pair of sample i and threshold j
*/
func (o *objective) active(x []float64) []bool {
	f := o.latent(x)
	b := x[o.n:]
	a := make([]bool, o.n*o.nb)
	for i, fi := range f {
		for j, bj := range b {
			a[i*o.nb+j] = 1-side(o.ranks[i], j)*(fi-bj) > 0
		}
	}
	return a
}

/*
target solves the stationarity conditions of the quadratic the objective is on the active set a.
For the sample i with active thresholds A_i

	beta_i + 2C sum_{j in A_i} (f_i - b_j - s_ij) = 0

and for the threshold j with active samples A^j

	sum_{i in A^j} (f_i - b_j - s_ij) = 0

a threshold without active samples keeps its current value
*/
func (o *objective) target(x []float64, a []bool) ([]float64, error) {
	n, nb := o.n, o.nb
	dim := n + nb
	m := mat.NewDense(dim, dim, nil)
	rhs := mat.NewVecDense(dim, nil)
	count := make([]float64, nb)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
		for j := 0; j < nb; j++ {
			if !a[i*nb+j] {
				continue
			}
			s := side(o.ranks[i], j)
			for l := 0; l < n; l++ {
				k := o.k.At(i, l)
				m.Set(i, l, m.At(i, l)+2*o.c*k)
				m.Set(n+j, l, m.At(n+j, l)+k)
			}
			m.Set(i, n+j, m.At(i, n+j)-2*o.c)
			rhs.SetVec(i, rhs.AtVec(i)+2*o.c*s)
			rhs.SetVec(n+j, rhs.AtVec(n+j)+s)
			count[j]++
		}
	}
	for j, c := range count {
		if c == 0 {
			m.Set(n+j, n+j, 1)
			rhs.SetVec(n+j, x[n+j])
		} else {
			m.Set(n+j, n+j, -c)
		}
	}

	var r mat.VecDense
	if err := r.SolveVec(m, rhs); err != nil {
		var cond mat.Condition
		if !xerrors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, xerrors.Errorf("singular newton system: %w", err)
		}
	}
	t := append([]float64(nil), r.RawVector().Data...)
	if !fu.Finite(t) {
		return nil, xerrors.Errorf("newton system has no finite solution")
	}
	return t, nil
}

func sameActive(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type newtonResult struct {
	x          []float64
	f          float64
	iterations int
	converged  bool
}

/*
minimize runs the finite Newton method: every step jumps to the minimum of the quadratic
defined by the current active set, a backtracking line search keeps the objective decreasing.
The method stops when a full step keeps the active set, or when the step does not decrease
the objective by more than the relative tolerance
*/
func (o *objective) minimize(x []float64, iter int, tol float64) (newtonResult, error) {
	x = append([]float64(nil), x...)
	fx := o.Func(x)
	next := make([]float64, len(x))
	for it := 1; it <= iter; it++ {
		a := o.active(x)
		t, err := o.target(x, a)
		if err != nil {
			return newtonResult{x: x, f: fx, iterations: it}, err
		}
		floats.SubTo(t, t, x)
		step := 1.0
		var fn float64
		for h := 0; ; h++ {
			floats.AddScaledTo(next, x, step, t)
			if fn = o.Func(next); fn <= fx || h == maxHalvings {
				break
			}
			step /= 2
		}
		if fn > fx {
			// no descent along the newton direction, x is stationary up to rounding
			g := make([]float64, len(x))
			o.Grad(g, x)
			ok := floats.Norm(g, math.Inf(1)) <= math.Sqrt(tol)*math.Max(1, math.Abs(fx))
			return newtonResult{x: x, f: fx, iterations: it, converged: ok}, nil
		}
		decrease := fx - fn
		copy(x, next)
		fx = fn
		if step == 1 && sameActive(a, o.active(x)) {
			return newtonResult{x: x, f: fx, iterations: it, converged: true}, nil
		}
		if decrease <= tol*math.Max(1, math.Abs(fx)) && step == 1 {
			return newtonResult{x: x, f: fx, iterations: it, converged: true}, nil
		}
	}
	return newtonResult{x: x, f: fx, iterations: iter}, nil
}
