package svorex

import (
	"gonum.org/v1/gonum/floats"
	"math"
)

/*
Kernel is a kind of the kernel function
*/
type Kernel int

const (
	Gaussian   Kernel = iota // exp(-kappa*|a-b|^2)
	Linear                   // a.b
	Polynomial               // (kappa*a.b + 1)^degree
)

func (k Kernel) String() string {
	switch k {
	case Gaussian:
		return "gaussian"
	case Linear:
		return "linear"
	case Polynomial:
		return "polynomial"
	}
	return "unknown"
}

func (k Kernel) Eval(a, b []float64, kappa float64, degree int) float64 {
	switch k {
	case Linear:
		return floats.Dot(a, b)
	case Polynomial:
		return math.Pow(kappa*floats.Dot(a, b)+1, float64(degree))
	default:
		d := floats.Distance(a, b, 2)
		return math.Exp(-kappa * d * d)
	}
}
