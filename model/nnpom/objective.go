package nnpom

import (
	"go-ml.dev/pkg/ordinal/fu"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

// smallest likelihood of a sample, keeps the loss finite
const minProbability = 1e-12

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// parameters = [W (hidden x (dim+1)), v (hidden), a (classes-1)]
type objective struct {
	x1      *mat.Dense // samples with leading bias column
	ranks   []int
	classes int
	hidden  int
	lambda  float64

	last []float64
	loss float64
	grad []float64
}

func newObjective(x [][]float64, ranks []int, classes, hidden int, lambda float64) *objective {
	d := len(x[0])
	rows := make([][]float64, len(x))
	for i, row := range x {
		rows[i] = append([]float64{1}, row...)
	}
	x1 := mat.NewDense(len(x), d+1, fu.Flatnr(rows))
	return &objective{x1: x1, ranks: ranks, classes: classes, hidden: hidden, lambda: lambda}
}

func (o *objective) size() int {
	_, c := o.x1.Dims()
	return o.hidden*c + o.hidden + o.classes - 1
}

func (o *objective) unpack(params []float64) (*mat.Dense, []float64, []float64) {
	_, c := o.x1.Dims()
	nw := o.hidden * c
	return mat.NewDense(o.hidden, c, params[:nw]), params[nw : nw+o.hidden], params[nw+o.hidden:]
}

func (o *objective) Func(params []float64) float64 {
	o.evaluate(params)
	return o.loss
}

func (o *objective) Grad(grad, params []float64) {
	o.evaluate(params)
	copy(grad, o.grad)
}

func (o *objective) evaluate(params []float64) {
	if o.last != nil && floats.Equal(o.last, params) {
		return
	}
	n, _ := o.x1.Dims()
	w, v, a := o.unpack(params)
	theta := thresholds(a)
	nb := o.classes - 1

	z := mat.NewDense(n, o.hidden, nil)
	z.Mul(o.x1, w.T())
	back := mat.NewDense(n, o.hidden, nil)
	gv := make([]float64, o.hidden)
	gt := make([]float64, nb)
	h := make([]float64, o.hidden)
	loss := 0.0

	for i, y := range o.ranks {
		for k := range h {
			h[k] = sigmoid(z.At(i, k))
		}
		p := floats.Dot(v, h)
		su, sl := 1.0, 0.0
		if y < nb {
			su = sigmoid(theta[y] - p)
		}
		if y > 0 {
			sl = sigmoid(theta[y-1] - p)
		}
		pr := math.Max(su-sl, minProbability)
		loss -= math.Log(pr)
		du, dl := su*(1-su), sl*(1-sl)
		if y < nb {
			gt[y] -= du / pr
		}
		if y > 0 {
			gt[y-1] += dl / pr
		}
		dp := (du - dl) / pr
		floats.AddScaled(gv, dp, h)
		for k, hk := range h {
			back.Set(i, k, dp*v[k]*hk*(1-hk))
		}
	}

	var gw mat.Dense
	gw.Mul(back.T(), o.x1)

	// biases and thresholds are not penalized
	_, c := w.Dims()
	for k := 0; k < o.hidden; k++ {
		for j := 1; j < c; j++ {
			wkj := w.At(k, j)
			loss += o.lambda / 2 * wkj * wkj
			gw.Set(k, j, gw.At(k, j)+o.lambda*wkj)
		}
		loss += o.lambda / 2 * v[k] * v[k]
		gv[k] += o.lambda * v[k]
	}

	ga := make([]float64, nb)
	tail := 0.0
	for m := nb - 1; m >= 0; m-- {
		tail += gt[m]
		if m == 0 {
			ga[m] = tail
		} else {
			ga[m] = 2 * a[m] * tail
		}
	}

	o.grad = append(append(append(o.grad[:0], gw.RawMatrix().Data...), gv...), ga...)
	o.loss = loss
	o.last = append(o.last[:0], params...)
}
