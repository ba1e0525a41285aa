/*
Package svorex implements support vector ordinal regression with explicit constraints.

The latent function f(x) = sum_i beta_i K(x_i, x) is shared by r-1 thresholds.
Every threshold j separates the samples of ranks <= j from the samples of higher ranks,
so every sample contributes to every threshold. The squared hinge form of the problem

	1/2 beta' K beta + C sum_j sum_i max(0, 1 - s_ij (f(x_i) - b_j))^2

is convex and piecewise quadratic, it is minimized by the finite Newton method:
every step solves the linear system of the quadratic piece selected by the active hinge terms.

References:
	W. Chu, S. S. Keerthi, New approaches to support vector ordinal regression,
	Proc. of the 22nd International Conference on Machine Learning, 2005.
*/
package svorex

import (
	"encoding/json"
	"go-ml.dev/pkg/ordinal/fu"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/zlog"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"reflect"
	"sort"
)

const Name = "svorex"

// coefficients below are not support vectors
const betaEpsilon = 1e-10

/*
Config is the set of solver hyper-parameters
*/
type Config struct {
	C           float64 `json:"C"`
	Kernel      Kernel  `json:"kernel"`
	Kappa       float64 `json:"kappa"`
	Degree      int     `json:"degree"`
	Tol         float64 `json:"tol"`
	Iter        int     `json:"iter"`
	Standardize bool    `json:"standardize"`
}

/*
DefaultConfig returns default hyper-parameters
*/
func DefaultConfig() Config {
	return Config{
		C:           1,
		Kernel:      Gaussian,
		Kappa:       1,
		Degree:      2,
		Tol:         1e-6,
		Iter:        2000,
		Standardize: true,
	}
}

func (c *Config) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"C":           reflect.ValueOf(&c.C),
		"kernel":      reflect.ValueOf(&c.Kernel),
		"kappa":       reflect.ValueOf(&c.Kappa),
		"degree":      reflect.ValueOf(&c.Degree),
		"tol":         reflect.ValueOf(&c.Tol),
		"iter":        reflect.ValueOf(&c.Iter),
		"standardize": reflect.ValueOf(&c.Standardize),
	}
}

func (c Config) validate() error {
	switch {
	case c.C <= 0:
		return model.Trainingf(model.InvalidParams, "C must be positive, got %v", c.C)
	case c.Kernel < Gaussian || c.Kernel > Polynomial:
		return model.Trainingf(model.InvalidParams, "unknown kernel %d", int(c.Kernel))
	case c.Kappa <= 0:
		return model.Trainingf(model.InvalidParams, "kappa must be positive, got %v", c.Kappa)
	case c.Degree < 1:
		return model.Trainingf(model.InvalidParams, "degree must be at least 1, got %v", c.Degree)
	case c.Tol <= 0:
		return model.Trainingf(model.InvalidParams, "tol must be positive, got %v", c.Tol)
	case c.Iter < 1:
		return model.Trainingf(model.InvalidParams, "iter must be at least 1, got %v", c.Iter)
	}
	return nil
}

/*
Solver fits SVOREX machines
*/
type Solver struct {
	defaults Config
	log      *zlog.Logger
}

type Option func(*Solver)

/*
WithDefaults replaces default hyper-parameters
*/
func WithDefaults(c Config) Option {
	return func(s *Solver) { s.defaults = c }
}

func WithLogger(l *zlog.Logger) Option {
	return func(s *Solver) { s.log = l }
}

func New(opts ...Option) *Solver {
	s := &Solver{defaults: DefaultConfig()}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zlog.Get(Name)
	}
	return s
}

func (s *Solver) Name() string {
	return Name
}

/*
Fit trains a machine, params override the solver defaults
*/
func (s *Solver) Fit(features [][]float64, ranks []int, classes int, params model.Params) (model.Handle, error) {
	cfg := s.defaults
	if err := params.Apply(cfg.fields()); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(features) == 0 || len(features) != len(ranks) || classes < 2 {
		return nil, model.Trainingf(model.DimensionMismatch, "%d vectors, %d ranks, %d classes", len(features), len(ranks), classes)
	}

	var sc *model.Scaler
	x := features
	if cfg.Standardize {
		sc = model.FitScaler(features)
		x = sc.TransformAll(features)
	}

	n, nb := len(x), classes-1
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, cfg.Kernel.Eval(x[i], x[j], cfg.Kappa, cfg.Degree))
		}
	}

	obj := &objective{k: k, ranks: ranks, c: cfg.C, n: n, nb: nb}
	init := make([]float64, n+nb)
	for j := 0; j < nb; j++ {
		init[n+j] = float64(j) - float64(nb-1)/2
	}
	result, err := obj.minimize(init, cfg.Iter, cfg.Tol)
	if err != nil {
		return nil, model.Trainingf(model.NotConverged, "newton step failed after %d iterations: %w", result.iterations, err)
	}
	if !result.converged {
		grad := make([]float64, len(result.x))
		obj.Grad(grad, result.x)
		return nil, model.Trainingf(model.NotConverged, "gradient %.3g after %d iterations", floats.Norm(grad, math.Inf(1)), result.iterations)
	}
	s.log.Debugf("converged in %d iterations, objective %.6g", result.iterations, result.f)

	m := &Machine{Config: cfg, Scaler: sc}
	var support [][]float64
	for i, b := range result.x[:n] {
		if math.Abs(b) > betaEpsilon {
			support = append(support, x[i])
			m.Beta = append(m.Beta, b)
		}
	}
	m.Vectors = fu.Copyr(support)
	m.Thresholds = append([]float64(nil), result.x[n:]...)
	sort.Float64s(m.Thresholds)
	return m, nil
}

func (s *Solver) machine(h model.Handle) (*Machine, error) {
	m, ok := h.(*Machine)
	if !ok || m == nil {
		return nil, model.Inferencef(model.NotFitted, "handle %T is not a svorex machine", h)
	}
	return m, nil
}

/*
Predict returns rank of every vector
*/
func (s *Solver) Predict(h model.Handle, features [][]float64) ([]int, error) {
	m, err := s.machine(h)
	if err != nil {
		return nil, err
	}
	r := make([]int, len(features))
	for i, row := range features {
		r[i] = m.Rank(m.Project(row))
	}
	return r, nil
}

/*
Project returns latent function values
*/
func (s *Solver) Project(h model.Handle, features [][]float64) ([]float64, error) {
	m, err := s.machine(h)
	if err != nil {
		return nil, err
	}
	r := make([]float64, len(features))
	for i, row := range features {
		r[i] = m.Project(row)
	}
	return r, nil
}

func (s *Solver) Decode(data []byte) (model.Handle, error) {
	m := &Machine{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, xerrors.Errorf("failed to decode svorex machine: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}
