package model

import (
	"go-ml.dev/pkg/ordinal/fu"
	"sort"
)

/*
Dataset is a training set of feature vectors paired with ordinal labels
*/
type Dataset struct {
	Features [][]float64 // one row per sample, all rows of the same width
	Labels   []int       // ordinal label of every row
	Classes  []int       // optional declared ranks, sorted distinct labels are used if nil
}

type prepared struct {
	dim     int
	classes []int
	ranks   []int
}

/*
Len returns count of samples
*/
func (ds Dataset) Len() int {
	return len(ds.Features)
}

/*
Subset returns dataset of the rows with specified indexes sharing the same classes
*/
func (ds Dataset) Subset(index []int) Dataset {
	r := Dataset{
		Features: make([][]float64, len(index)),
		Labels:   make([]int, len(index)),
		Classes:  ds.Classes,
	}
	for i, j := range index {
		r.Features[i] = ds.Features[j]
		r.Labels[i] = ds.Labels[j]
	}
	return r
}

/*
ClassSet returns declared classes or sorted distinct labels
*/
func (ds Dataset) ClassSet() []int {
	if len(ds.Classes) > 0 {
		c := append([]int(nil), ds.Classes...)
		sort.Ints(c)
		return c
	}
	return Distinct(ds.Labels)
}

/*
Validate checks the training set invariants
*/
func (ds Dataset) Validate() error {
	_, err := ds.prepare()
	return err
}

func (ds Dataset) prepare() (*prepared, error) {
	if len(ds.Features) == 0 {
		return nil, Trainingf(EmptyDataset, "training set is empty")
	}
	if len(ds.Features) != len(ds.Labels) {
		return nil, Trainingf(DimensionMismatch, "%d feature vectors but %d labels", len(ds.Features), len(ds.Labels))
	}
	dim := len(ds.Features[0])
	if dim == 0 {
		return nil, Trainingf(DimensionMismatch, "feature vectors have no features")
	}
	for i, row := range ds.Features {
		if len(row) != dim {
			return nil, Trainingf(DimensionMismatch, "feature vector %d has %d features, expected %d", i, len(row), dim)
		}
		if !fu.Finite(row) {
			return nil, Trainingf(BadInput, "feature vector %d has not finite value", i)
		}
	}
	classes := ds.ClassSet()
	for i := 1; i < len(classes); i++ {
		if classes[i] == classes[i-1] {
			return nil, Trainingf(BadLabel, "declared class %d is duplicated", classes[i])
		}
	}
	if len(classes) < 2 {
		return nil, Trainingf(BadLabel, "at least two classes are required, got %v", classes)
	}
	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	ranks := make([]int, len(ds.Labels))
	for i, l := range ds.Labels {
		r, ok := pos[l]
		if !ok {
			return nil, Trainingf(BadLabel, "label %d of sample %d is out of declared classes %v", l, i, classes)
		}
		ranks[i] = r
	}
	return &prepared{dim: dim, classes: classes, ranks: ranks}, nil
}

/*
Distinct returns sorted distinct values
*/
func Distinct(a []int) []int {
	seen := map[int]bool{}
	r := []int{}
	for _, x := range a {
		if !seen[x] {
			seen[x] = true
			r = append(r, x)
		}
	}
	sort.Ints(r)
	return r
}
