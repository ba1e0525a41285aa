package hyperopt

import (
	"context"
	"fmt"
	"go-ml.dev/pkg/ordinal/fu"
	"go-ml.dev/pkg/ordinal/metrics"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/stat"
	"math"
	"runtime"
)

/*
Space is a definition of hyper-parameters optimization space
*/
type Space struct {
	Source model.Dataset // training set
	Seed   int           // random seed of folds and samples
	Kfold  int           // count of dataset folds, 3 by default
	Metric string        // cross validation metric, ccr by default
	Jobs   int           // count of concurrently fitted folds, GOMAXPROCS by default
	Trials int           // count of random candidates, 20 by default

	// the solver generation function
	ModelFunc func() model.Solver

	// hyper-parameters variance
	Variance Variance

	// print function
	Verbose func(string)
}

/*
Candidates returns the grid if all parameters are discrete or random samples otherwise
*/
func (s Space) Candidates() []model.Params {
	if s.Variance.Discrete() {
		return s.Variance.Grid()
	}
	return s.Variance.Sample(fu.Fnzi(s.Trials, 20), s.Seed)
}

/*
Optimize evaluates candidates by cross validation and returns the best one.
Ties keep the first candidate, candidates failing on every fold are skipped
*/
func (s Space) Optimize(ctx context.Context) (Report, error) {
	metric := fu.Fnzs(s.Metric, "ccr")
	if _, err := metrics.Get(metric); err != nil {
		return Report{}, err
	}
	if s.ModelFunc == nil {
		return Report{}, xerrors.Errorf("no model function")
	}
	if err := s.Source.Validate(); err != nil {
		return Report{}, err
	}
	folds, err := StratifiedFolds(s.Source.Labels, fu.Fnzi(s.Kfold, 3), s.Seed)
	if err != nil {
		return Report{}, err
	}
	greater := metrics.GreaterIsBetter(metric)

	best := Report{Score: math.NaN()}
	var last error
	for i, p := range s.Candidates() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		score, err := s.evaluate(ctx, folds, metric, p)
		best.Trials++
		if err != nil {
			last = err
			if s.Verbose != nil {
				s.Verbose(fmt.Sprintf("candidate %d {%v} failed: %v", i, p, err))
			}
			continue
		}
		if s.Verbose != nil {
			s.Verbose(fmt.Sprintf("candidate %d {%v}: %v=%.5f", i, p, metric, score))
		}
		if best.Params == nil || (greater && score > best.Score) || (!greater && score < best.Score) {
			best.Params, best.Score = p, score
		}
	}
	if best.Params == nil {
		if last == nil {
			last = xerrors.Errorf("no candidates")
		}
		return Report{}, xerrors.Errorf("all candidates failed: %w", last)
	}
	return best, nil
}

// mean metric over the folds fitted successfully
func (s Space) evaluate(ctx context.Context, folds [][]int, metric string, p model.Params) (float64, error) {
	ds := s.Source
	ds.Classes = ds.ClassSet()
	scores := make([]float64, len(folds))
	failed := make([]error, len(folds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fu.Fnzi(s.Jobs, runtime.GOMAXPROCS(0)))
	for i, fold := range folds {
		i, fold := i, fold
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			train := ds.Subset(complement(ds.Len(), fold))
			test := ds.Subset(fold)
			r, err := model.Training{Metrics: []string{metric}}.Run(s.ModelFunc(), train, &test, p)
			if err != nil {
				failed[i] = err
				return nil
			}
			scores[i] = r.Score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	ok := make([]float64, 0, len(folds))
	var last error
	for i, sc := range scores {
		if failed[i] != nil {
			last = failed[i]
			continue
		}
		ok = append(ok, sc)
	}
	if len(ok) == 0 {
		return 0, last
	}
	return stat.Mean(ok, nil), nil
}
