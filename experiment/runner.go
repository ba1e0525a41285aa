package experiment

import (
	"context"
	"go-ml.dev/pkg/ordinal/dataset"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/hyperopt"
	"go-ml.dev/pkg/ordinal/zlog"
	"golang.org/x/xerrors"
	"math"
	"path/filepath"
	"strings"
	"time"
)

/*
Saver stores fitted models, the model store implements it
*/
type Saver interface {
	Save(ctx context.Context, name string, m *model.Model, meta map[string]float64) error
}

/*
Record is the result of one configuration on one partition
*/
type Record struct {
	Dataset   string
	Config    string
	Partition string
	Params    model.Params // the fitted params, the best ones after cross validation
	Train     map[string]float64
	Test      map[string]float64 // NaN without test file
	CVScore   float64            // NaN without cross validation
	CVTime    time.Duration
	FitTime   time.Duration
	TestTime  time.Duration
	Model     *model.Model
}

/*
ModelName is the name a partition model is saved under
*/
func (r Record) ModelName() string {
	return strings.Join([]string{r.Dataset, r.Config, r.Partition}, "/")
}

/*
Runner runs an experiment
*/
type Runner struct {
	Experiment *Experiment
	Table      model.Table
	Saver      Saver // required if models are saved
	Log        *zlog.Logger
}

/*
Run fits and evaluates every configuration on every partition of every dataset
*/
func (r Runner) Run(ctx context.Context) (*Results, error) {
	e := r.Experiment
	if err := e.Validate(r.Table); err != nil {
		return nil, err
	}
	if e.General.SaveModels && r.Saver == nil {
		return nil, xerrors.Errorf("save_models requires a model store")
	}
	log := r.Log
	if log == nil {
		log = zlog.Get("experiment")
	}
	base, err := dataset.ExpandBase(e.General.Basedir)
	if err != nil {
		return nil, err
	}
	names, err := dataset.ExpandList(base, e.General.Datasets)
	if err != nil {
		return nil, err
	}

	results := &Results{Metrics: normalized(e.General.Metrics)}
	for _, name := range names {
		parts, err := dataset.LoadPartitions(filepath.Join(base, name))
		if err != nil {
			return nil, err
		}
		log.Infof("running %v dataset, %d partitions", name, len(parts))
		for _, conf := range e.Configurations {
			for _, part := range parts {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				rec, err := r.partition(ctx, conf, part)
				if err != nil {
					return nil, xerrors.Errorf("%v/%v/%v: %w", name, conf.Name, part.Key, err)
				}
				rec.Dataset = name
				if e.General.SaveModels {
					if err := r.Saver.Save(ctx, rec.ModelName(), rec.Model, rec.meta()); err != nil {
						return nil, err
					}
				}
				log.Infow("partition done",
					"dataset", name, "config", conf.Name, "partition", part.Key,
					"params", rec.Params.String(), "fit", rec.FitTime)
				results.Records = append(results.Records, rec)
			}
		}
	}
	return results, nil
}

func (r Runner) partition(ctx context.Context, conf Configuration, part dataset.Partition) (Record, error) {
	g := r.Experiment.General
	rec := Record{Config: conf.Name, Partition: part.Key, CVScore: math.NaN()}
	newSolver := func() model.Solver {
		s, _ := r.Table.New(conf.Classifier)
		return s
	}

	params, fixed := conf.Fixed()
	if !fixed {
		start := time.Now()
		best, err := hyperopt.Space{
			Source:    part.Train,
			Seed:      g.Seed,
			Kfold:     g.Folds,
			Metric:    g.CVMetric,
			Jobs:      g.Jobs,
			Trials:    g.Trials,
			ModelFunc: newSolver,
			Variance:  conf.Variance(),
		}.Optimize(ctx)
		if err != nil {
			return rec, err
		}
		rec.CVTime = time.Since(start)
		rec.CVScore = best.Score
		params = best.Params
	}

	report, err := model.Training{Metrics: r.Experiment.General.Metrics}.Run(newSolver(), part.Train, part.Test, params)
	if err != nil {
		return rec, err
	}
	rec.Params = report.Model.Params()
	rec.Train, rec.Test = report.Train, report.Test
	rec.FitTime, rec.TestTime = report.FitTime, report.PredictTime
	rec.Model = report.Model
	return rec, nil
}

func (r Record) meta() map[string]float64 {
	m := map[string]float64{}
	for k, v := range r.Train {
		m[k+"_train"] = v
	}
	for k, v := range r.Test {
		if !math.IsNaN(v) {
			m[k+"_test"] = v
		}
	}
	if !math.IsNaN(r.CVScore) {
		m["cv_score"] = r.CVScore
	}
	return m
}

func normalized(names []string) []string {
	r := make([]string, len(names))
	for i, n := range names {
		r[i] = strings.ToLower(strings.TrimSpace(n))
	}
	return r
}
