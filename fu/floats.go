package fu

import (
	"math"
)

/*
Fnzi returns the first non-zero integer or zero if all of them are zero
*/
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Maxi(a int, b ...int) int {
	for _, x := range b {
		if x > a {
			a = x
		}
	}
	return a
}

/*
Indmaxd returns index of the first maximal value, -1 for an empty slice
*/
func Indmaxd(a []float64) int {
	j := -1
	for i, x := range a {
		if j < 0 || x > a[j] {
			j = i
		}
	}
	return j
}

/*
Finite checks there is no NaN or Inf in the slice
*/
func Finite(a []float64) bool {
	for _, x := range a {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

/*
Flatnr concatenates rows into one row-major slice
*/
func Flatnr(a [][]float64) []float64 {
	n := 0
	for _, x := range a {
		n += len(x)
	}
	r := make([]float64, n)
	i := 0
	for _, x := range a {
		copy(r[i:i+len(x)], x)
		i += len(x)
	}
	return r
}

/*
Copyr makes a deep copy of rows
*/
func Copyr(a [][]float64) [][]float64 {
	r := make([][]float64, len(a))
	for i, x := range a {
		r[i] = append([]float64(nil), x...)
	}
	return r
}
