/*
Package nnpom implements the neural network proportional odds model.

The network has one hidden layer of sigmoid units and one linear output p(x).
The cumulative probabilities are P(y <= j) = sigmoid(theta_j - p(x)), the thresholds
are kept ordered by the parametrization theta_1 = a_1, theta_j = theta_{j-1} + a_j^2.
The regularized negative log-likelihood is minimized by L-BFGS.

References:
	M. J. Mathieson, Ordinal models for neural networks,
	Neural Networks in Financial Engineering, 1996.
*/
package nnpom

import (
	"encoding/json"
	"go-ml.dev/pkg/ordinal/fu"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/zlog"
	"golang.org/x/exp/rand"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"reflect"
)

const Name = "nnpom"

/*
Config is the set of network hyper-parameters
*/
type Config struct {
	EpsilonInit float64 `json:"epsilonInit"`
	HiddenN     int     `json:"hiddenN"`
	Iter        int     `json:"iter"`
	Lambda      float64 `json:"lambda"`
	Seed        int     `json:"seed"`
	Standardize bool    `json:"standardize"`
}

func DefaultConfig() Config {
	return Config{
		EpsilonInit: 0.5,
		HiddenN:     50,
		Iter:        500,
		Lambda:      0.01,
		Seed:        1,
		Standardize: true,
	}
}

func (c *Config) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"epsilonInit": reflect.ValueOf(&c.EpsilonInit),
		"hiddenN":     reflect.ValueOf(&c.HiddenN),
		"iter":        reflect.ValueOf(&c.Iter),
		"lambda":      reflect.ValueOf(&c.Lambda),
		"seed":        reflect.ValueOf(&c.Seed),
		"standardize": reflect.ValueOf(&c.Standardize),
	}
}

func (c Config) validate() error {
	switch {
	case c.EpsilonInit <= 0:
		return model.Trainingf(model.InvalidParams, "epsilonInit must be positive, got %v", c.EpsilonInit)
	case c.HiddenN < 1:
		return model.Trainingf(model.InvalidParams, "hiddenN must be at least 1, got %v", c.HiddenN)
	case c.Iter < 1:
		return model.Trainingf(model.InvalidParams, "iter must be at least 1, got %v", c.Iter)
	case c.Lambda < 0:
		return model.Trainingf(model.InvalidParams, "lambda must not be negative, got %v", c.Lambda)
	}
	return nil
}

/*
Solver fits proportional odds networks
*/
type Solver struct {
	defaults Config
	log      *zlog.Logger
}

type Option func(*Solver)

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
Fit trains a network. Reaching the iteration limit is a normal stop,
the same seed and data always give the same network
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

	obj := newObjective(x, ranks, classes, cfg.HiddenN, cfg.Lambda)
	init := make([]float64, obj.size())
	u := distuv.Uniform{Min: -cfg.EpsilonInit, Max: cfg.EpsilonInit, Src: rand.NewSource(uint64(cfg.Seed))}
	for i := range init {
		init[i] = u.Rand()
	}

	settings := &optimize.Settings{
		GradientThreshold: 1e-8,
		MajorIterations:   cfg.Iter,
	}
	result, err := optimize.Minimize(optimize.Problem{Func: obj.Func, Grad: obj.Grad}, init, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, model.Trainingf(model.SolverFailure, "optimizer failed: %w", err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) || !fu.Finite(result.X) {
		return nil, model.Trainingf(model.NotConverged, "loss diverged after %d iterations", result.MajorIterations)
	}
	if err != nil {
		// the best location found so far is still a valid network
		s.log.Warnf("optimizer stopped with %v after %d iterations: %v", result.Status, result.MajorIterations, err)
	} else {
		s.log.Debugf("stopped in %d iterations, status %v, loss %.6g", result.MajorIterations, result.Status, result.F)
	}

	w, v, a := obj.unpack(result.X)
	net := &Network{
		Config:     cfg,
		Scaler:     sc,
		Hidden:     make([][]float64, cfg.HiddenN),
		Output:     append([]float64(nil), v...),
		Thresholds: thresholds(a),
	}
	for k := range net.Hidden {
		net.Hidden[k] = append([]float64(nil), w.RawRowView(k)...)
	}
	return net, nil
}

func (s *Solver) network(h model.Handle) (*Network, error) {
	n, ok := h.(*Network)
	if !ok || n == nil {
		return nil, model.Inferencef(model.NotFitted, "handle %T is not a nnpom network", h)
	}
	return n, nil
}

/*
Predict returns the most probable rank of every vector
*/
func (s *Solver) Predict(h model.Handle, features [][]float64) ([]int, error) {
	n, err := s.network(h)
	if err != nil {
		return nil, err
	}
	r := make([]int, len(features))
	for i, row := range features {
		r[i] = fu.Indmaxd(n.Probabilities(row))
	}
	return r, nil
}

/*
Project returns the network outputs
*/
func (s *Solver) Project(h model.Handle, features [][]float64) ([]float64, error) {
	n, err := s.network(h)
	if err != nil {
		return nil, err
	}
	r := make([]float64, len(features))
	for i, row := range features {
		r[i] = n.Project(row)
	}
	return r, nil
}

func (s *Solver) Decode(data []byte) (model.Handle, error) {
	n := &Network{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, xerrors.Errorf("failed to decode nnpom network: %w", err)
	}
	if err := n.check(); err != nil {
		return nil, err
	}
	return n, nil
}

// theta_1 = a_1, theta_j = theta_{j-1} + a_j^2
func thresholds(a []float64) []float64 {
	t := make([]float64, len(a))
	for j, x := range a {
		if j == 0 {
			t[j] = x
		} else {
			t[j] = t[j-1] + x*x
		}
	}
	return t
}
