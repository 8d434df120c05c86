package views

import (
	"errors"
	"fmt"
)

var (
	// ErrSelection marks a selection that cannot drive the requested view.
	ErrSelection = errors.New("invalid selection")
	// ErrUnknownView is returned for a view kind the assembler does not build.
	ErrUnknownView = errors.New("unknown view")
	// ErrDatasetUnavailable is returned when a view's input failed to load.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)

// Stage names a step of a view pipeline.
type Stage string

const (
	StageLoad      Stage = "load"
	StageSelection Stage = "selection"
	StageReference Stage = "reference"
	StageFilter    Stage = "filter"
	StageMerge     Stage = "merge"
	StageNormalize Stage = "normalize"
	StageProject   Stage = "project"
	StageSort      Stage = "sort"
	StageBound     Stage = "bound"
)

// StageError identifies the view and pipeline stage a failure came from.
type StageError struct {
	View  Kind
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s view: %s stage: %v", e.View, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type pipeline struct {
	view Kind
}

func (p pipeline) fail(stage Stage, err error) error {
	return &StageError{View: p.view, Stage: stage, Err: err}
}
