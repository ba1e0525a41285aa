/*
Package hyperopt implements grid and random hyper-parameter search
scored by stratified k-fold cross validation
*/
package hyperopt

import (
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"sort"
)

/*
Range is a open float range specified by min and max values (min,max)
*/
type Range [2]float64

/*
LogRange is a open float logarithmic range specified by min and max values (min,max)
*/
type LogRange [2]float64

/*
IntRange is a close integer range specified by min and max values [min,max]
*/
type IntRange [2]int

/*
LogIntRange is a close logarithmic integer range specified by min and max values [min,max]
*/
type LogIntRange [2]int

/*
List is a list of possible parameter values
*/
type List []float64

/*
Value is a single value parameter
*/
type Value float64

/*
Distribution is one of Range, LogRange, IntRange, LogIntRange, List or Value
*/
type Distribution interface {
	sample(*sampler) float64
	// grid returns all values of a discrete distribution
	grid() ([]float64, bool)
}

/*
Variance is a space of hyper-parameters
*/
type Variance map[string]Distribution

/*
Discrete reports whether every parameter has a finite set of values
*/
func (v Variance) Discrete() bool {
	for _, d := range v {
		if _, ok := d.grid(); !ok {
			return false
		}
	}
	return true
}

func (v Variance) keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*
Report is a result of hyper-parameters optimization
*/
type Report struct {
	model.Params
	Score float64
	Trials int // count of evaluated candidates
}

type sampler struct {
	src rand.Source
	rnd *rand.Rand
}

func newSampler(seed int) *sampler {
	src := rand.NewSource(uint64(seed))
	return &sampler{src: src, rnd: rand.New(src)}
}

func (s *sampler) uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: s.src}.Rand()
}

func (r Range) sample(s *sampler) float64 {
	return s.uniform(r[0], r[1])
}

func (r Range) grid() ([]float64, bool) { return nil, false }

func (r LogRange) sample(s *sampler) float64 {
	return math.Exp(s.uniform(math.Log(r[0]), math.Log(r[1])))
}

func (r LogRange) grid() ([]float64, bool) { return nil, false }

func (r IntRange) sample(s *sampler) float64 {
	lo, hi := r[0], r[1]
	if hi < lo {
		lo, hi = hi, lo
	}
	return float64(lo + s.rnd.Intn(hi-lo+1))
}

func (r IntRange) grid() ([]float64, bool) { return nil, false }

func (r LogIntRange) sample(s *sampler) float64 {
	lo, hi := r[0], r[1]
	if hi < lo {
		lo, hi = hi, lo
	}
	v := math.Floor(math.Exp(s.uniform(math.Log(float64(lo)), math.Log(float64(hi)+1))))
	return math.Max(float64(lo), math.Min(float64(hi), v))
}

func (r LogIntRange) grid() ([]float64, bool) { return nil, false }

func (l List) sample(s *sampler) float64 {
	return l[s.rnd.Intn(len(l))]
}

func (l List) grid() ([]float64, bool) { return l, true }

func (v Value) sample(*sampler) float64 {
	return float64(v)
}

func (v Value) grid() ([]float64, bool) { return []float64{float64(v)}, true }

/*
Grid returns all combinations of discrete parameter values,
the last parameter in name order changes fastest
*/
func (v Variance) Grid() []model.Params {
	keys := v.keys()
	r := []model.Params{{}}
	for _, k := range keys {
		values, _ := v[k].grid()
		next := make([]model.Params, 0, len(r)*len(values))
		for _, p := range r {
			for _, x := range values {
				q := p.Copy()
				q[k] = x
				next = append(next, q)
			}
		}
		r = next
	}
	return r
}

/*
Sample returns count of random candidates generated from the seed
*/
func (v Variance) Sample(count, seed int) []model.Params {
	s := newSampler(seed)
	keys := v.keys()
	r := make([]model.Params, count)
	for i := range r {
		p := make(model.Params, len(keys))
		for _, k := range keys {
			p[k] = v[k].sample(s)
		}
		r[i] = p
	}
	return r
}
