package model

import (
	"fmt"
	"golang.org/x/xerrors"
)

/*
Reason classifies why fit or predict failed
*/
type Reason int

const (
	SolverFailure Reason = iota
	EmptyDataset
	DimensionMismatch
	BadLabel
	BadInput
	InvalidParams
	NotConverged
	NotFitted
	OutputMismatch
)

var reasonNames = map[Reason]string{
	SolverFailure:     "solver failure",
	EmptyDataset:      "empty dataset",
	DimensionMismatch: "dimension mismatch",
	BadLabel:          "bad label",
	BadInput:          "bad input",
	InvalidParams:     "invalid params",
	NotConverged:      "not converged",
	NotFitted:         "not fitted",
	OutputMismatch:    "output mismatch",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

/*
TrainingError is returned by Fit when the training set, the hyper-parameters or the solver fail
*/
type TrainingError struct {
	Reason Reason
	Err    error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training error (%v): %v", e.Reason, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

/*
InferenceError is returned by Predict when the model or the query set is unusable
*/
type InferenceError struct {
	Reason Reason
	Err    error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference error (%v): %v", e.Reason, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

/*
Trainingf formats a new TrainingError, %w verb wraps the cause
*/
func Trainingf(r Reason, format string, a ...interface{}) error {
	return &TrainingError{Reason: r, Err: xerrors.Errorf(format, a...)}
}

/*
Inferencef formats a new InferenceError, %w verb wraps the cause
*/
func Inferencef(r Reason, format string, a ...interface{}) error {
	return &InferenceError{Reason: r, Err: xerrors.Errorf(format, a...)}
}

func IsTrainingError(err error) bool {
	var e *TrainingError
	return xerrors.As(err, &e)
}

func IsInferenceError(err error) bool {
	var e *InferenceError
	return xerrors.As(err, &e)
}

/*
ReasonOf extracts the reason of a training or inference error
*/
func ReasonOf(err error) (Reason, bool) {
	var te *TrainingError
	if xerrors.As(err, &te) {
		return te.Reason, true
	}
	var ie *InferenceError
	if xerrors.As(err, &ie) {
		return ie.Reason, true
	}
	return SolverFailure, false
}
