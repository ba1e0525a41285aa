package model

import (
	"gonum.org/v1/gonum/stat"
	"math"
)

/*
Scaler standardizes features to zero mean and unit variance
*/
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

/*
FitScaler calculates column means and standard deviations,
constant columns keep scale 1
*/
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	dim := len(rows[0])
	sc := &Scaler{Mean: make([]float64, dim), Scale: make([]float64, dim)}
	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std < 1e-12 {
			std = 1
		}
		sc.Mean[j], sc.Scale[j] = mean, std
	}
	return sc
}

func (sc *Scaler) Transform(row []float64) []float64 {
	r := make([]float64, len(row))
	for j, x := range row {
		r[j] = (x - sc.Mean[j]) / sc.Scale[j]
	}
	return r
}

func (sc *Scaler) TransformAll(rows [][]float64) [][]float64 {
	r := make([][]float64, len(rows))
	for i, row := range rows {
		r[i] = sc.Transform(row)
	}
	return r
}
