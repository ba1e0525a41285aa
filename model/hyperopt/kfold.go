package hyperopt

import (
	"golang.org/x/exp/rand"
	"golang.org/x/xerrors"
)

/*
StratifiedFolds splits sample indexes into k test folds,
every label is spread evenly across the folds
*/
func StratifiedFolds(labels []int, k, seed int) ([][]int, error) {
	if k < 2 {
		return nil, xerrors.Errorf("at least 2 folds are required, got %d", k)
	}
	if len(labels) < k {
		return nil, xerrors.Errorf("%d samples can't be split into %d folds", len(labels), k)
	}
	groups := map[int][]int{}
	order := []int{}
	for i, l := range labels {
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		groups[l] = append(groups[l], i)
	}
	rnd := rand.New(rand.NewSource(uint64(seed)))
	folds := make([][]int, k)
	next := 0
	for _, l := range order {
		g := groups[l]
		rnd.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		for _, i := range g {
			folds[next] = append(folds[next], i)
			next = (next + 1) % k
		}
	}
	return folds, nil
}

// train indexes complementing the test fold
func complement(n int, fold []int) []int {
	skip := make([]bool, n)
	for _, i := range fold {
		skip[i] = true
	}
	r := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if !skip[i] {
			r = append(r, i)
		}
	}
	return r
}
