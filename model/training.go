package model

import (
	"fmt"
	"go-ml.dev/pkg/ordinal/metrics"
	"golang.org/x/xerrors"
	"math"
	"strings"
	"time"
)

/*
Training fits a model and evaluates it on the train and the optional test subsets
*/
type Training struct {
	Metrics   []string     // evaluating metrics
	Score     string       // metric used as the report score, the first metric by default
	ModelFile string       // file to store fitted model
	Verbose   func(string) // print function
}

/*
Report is a training report
*/
type Report struct {
	Model       *Model
	Train, Test map[string]float64 // metrics, test ones are NaN without test subset
	Score       float64            // score metric on test subset or on train one without test
	FitTime     time.Duration
	PredictTime time.Duration // test subset prediction time
}

/*
Run fits the solver and evaluates the fitted model
*/
func (t Training) Run(solver Solver, train Dataset, test *Dataset, params Params) (*Report, error) {
	names := t.Metrics
	score := strings.ToLower(strings.TrimSpace(t.Score))
	if score == "" && len(names) > 0 {
		score = strings.ToLower(strings.TrimSpace(names[0]))
	}
	if score != "" {
		names = append(append([]string(nil), names...), score)
	}
	for _, n := range names {
		if _, err := metrics.Get(n); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	m, err := Fit(solver, train, params)
	if err != nil {
		return nil, err
	}
	report := &Report{Model: m, FitTime: time.Since(start)}

	pred, err := m.Predict(train.Features)
	if err != nil {
		return nil, err
	}
	if report.Train, err = metrics.Evaluate(names, train.Labels, pred); err != nil {
		return nil, err
	}
	report.Score = report.Train[score]

	if test != nil {
		start = time.Now()
		if pred, err = m.Predict(test.Features); err != nil {
			return nil, err
		}
		report.PredictTime = time.Since(start)
		if report.Test, err = metrics.Evaluate(names, test.Labels, pred); err != nil {
			return nil, err
		}
		report.Score = report.Test[score]
	} else {
		report.Test = make(map[string]float64, len(report.Train))
		for k := range report.Train {
			report.Test[k] = math.NaN()
		}
	}

	if t.ModelFile != "" {
		if err = m.Save(t.ModelFile); err != nil {
			return nil, xerrors.Errorf("failed to store model: %w", err)
		}
	}

	if t.Verbose != nil {
		t.Verbose(fmt.Sprintf("[%v] fit: %v, predict: %v, score: %.5f, params: %v",
			solver.Name(), report.FitTime, report.PredictTime, report.Score, m.Params()))
	}
	return report, nil
}
