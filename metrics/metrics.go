/*
Package metrics implements ordinal classification metrics
*/
package metrics

import (
	"fmt"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/stat"
	"math"
	"sort"
	"strings"
)

/*
Metric compares true and predicted labels
*/
type Metric func(yTrue, yPred []int) float64

var table = map[string]Metric{
	"ccr":      CCR,
	"mae":      MAE,
	"amae":     AMAE,
	"mmae":     MMAE,
	"mze":      MZE,
	"tkendall": Tkendall,
	"wkappa":   Wkappa,
	"spearman": Spearman,
}

var greater = map[string]bool{
	"ccr":      true,
	"tkendall": true,
	"wkappa":   true,
	"spearman": true,
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

/*
Get returns metric by name
*/
func Get(name string) (Metric, error) {
	if m, ok := table[normalize(name)]; ok {
		return m, nil
	}
	return nil, xerrors.Errorf("no metric named `%v`", normalize(name))
}

/*
Names returns sorted names of known metrics
*/
func Names() []string {
	r := make([]string, 0, len(table))
	for k := range table {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
GreaterIsBetter tells the direction of the metric
*/
func GreaterIsBetter(name string) bool {
	return greater[normalize(name)]
}

/*
Evaluate calculates named metrics, keys of the result are normalized names
*/
func Evaluate(names []string, yTrue, yPred []int) (map[string]float64, error) {
	r := make(map[string]float64, len(names))
	for _, n := range names {
		m, err := Get(n)
		if err != nil {
			return nil, err
		}
		r[normalize(n)] = m(yTrue, yPred)
	}
	return r, nil
}

func check(yTrue, yPred []int) {
	if len(yTrue) != len(yPred) {
		panic(fmt.Sprintf("metrics: %d true labels but %d predicted", len(yTrue), len(yPred)))
	}
}

/*
CCR is the correctly classified ratio
*/
func CCR(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	if len(yTrue) == 0 {
		return math.NaN()
	}
	c := 0
	for i, y := range yTrue {
		if y == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

/*
MZE is the mean zero-one error
*/
func MZE(yTrue, yPred []int) float64 {
	return 1 - CCR(yTrue, yPred)
}

/*
MAE is the mean absolute error between labels
*/
func MAE(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	if len(yTrue) == 0 {
		return math.NaN()
	}
	s := 0.0
	for i, y := range yTrue {
		s += math.Abs(float64(y - yPred[i]))
	}
	return s / float64(len(yTrue))
}

// per class mean absolute errors in order of true classes
func classMAE(yTrue, yPred []int) []float64 {
	sum := map[int]float64{}
	cnt := map[int]int{}
	for i, y := range yTrue {
		sum[y] += math.Abs(float64(y - yPred[i]))
		cnt[y]++
	}
	classes := make([]int, 0, len(cnt))
	for c := range cnt {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	r := make([]float64, len(classes))
	for i, c := range classes {
		r[i] = sum[c] / float64(cnt[c])
	}
	return r
}

/*
AMAE is the average of per class mean absolute errors
*/
func AMAE(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	if len(yTrue) == 0 {
		return math.NaN()
	}
	return stat.Mean(classMAE(yTrue, yPred), nil)
}

/*
MMAE is the maximal per class mean absolute error
*/
func MMAE(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	if len(yTrue) == 0 {
		return math.NaN()
	}
	r := 0.0
	for _, x := range classMAE(yTrue, yPred) {
		r = math.Max(r, x)
	}
	return r
}

/*
Tkendall is Kendall's tau-b rank correlation
*/
func Tkendall(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	var concordant, discordant, tiesT, tiesP float64
	for i := 0; i < len(yTrue); i++ {
		for j := i + 1; j < len(yTrue); j++ {
			dt := sign(yTrue[i] - yTrue[j])
			dp := sign(yPred[i] - yPred[j])
			switch {
			case dt == 0 && dp == 0:
			case dt == 0:
				tiesT++
			case dp == 0:
				tiesP++
			case dt == dp:
				concordant++
			default:
				discordant++
			}
		}
	}
	d := math.Sqrt((concordant + discordant + tiesT) * (concordant + discordant + tiesP))
	if d == 0 {
		return 0
	}
	return (concordant - discordant) / d
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

/*
Wkappa is Cohen's kappa with quadratic weights
*/
func Wkappa(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	n := len(yTrue)
	if n == 0 {
		return math.NaN()
	}
	all := append(append([]int(nil), yTrue...), yPred...)
	pos := map[int]int{}
	for _, c := range all {
		pos[c] = 0
	}
	classes := make([]int, 0, len(pos))
	for c := range pos {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	k := len(classes)
	if k == 1 {
		return 1
	}
	for i, c := range classes {
		pos[c] = i
	}
	observed := make([]float64, k*k)
	rowT := make([]float64, k)
	colP := make([]float64, k)
	for i := range yTrue {
		a, b := pos[yTrue[i]], pos[yPred[i]]
		observed[a*k+b]++
		rowT[a]++
		colP[b]++
	}
	var num, den float64
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			w := float64((a-b)*(a-b)) / float64((k-1)*(k-1))
			num += w * observed[a*k+b]
			den += w * rowT[a] * colP[b] / float64(n)
		}
	}
	if den == 0 {
		return 1
	}
	return 1 - num/den
}

// average ranks, ties get the mean position
func ranks(a []int) []float64 {
	idx := make([]int, len(a))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return a[idx[i]] < a[idx[j]] })
	r := make([]float64, len(a))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && a[idx[j+1]] == a[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

/*
Spearman is the rank correlation coefficient, zero for constant inputs
*/
func Spearman(yTrue, yPred []int) float64 {
	check(yTrue, yPred)
	if len(yTrue) < 2 {
		return 0
	}
	c := stat.Correlation(ranks(yTrue), ranks(yPred), nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}
