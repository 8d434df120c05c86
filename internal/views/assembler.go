package views

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"wagedash/internal/engine"
)

// Observer receives per-view timings and merge diagnostics.
type Observer interface {
	ObserveView(view Kind, took time.Duration, err error)
	ObserveMerge(view Kind, stats engine.MergeStats)
}

type nopObserver struct{}

func (nopObserver) ObserveView(Kind, time.Duration, error) {}
func (nopObserver) ObserveMerge(Kind, engine.MergeStats) {}

// Option configures an Assembler.
type Option func(*Assembler)

// WithObserver reports every computation to o.
func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

// Assembler turns loaded datasets and a selection into view results. It
// holds only configuration; every call recomputes from the input tables.
type Assembler struct {
	settings Settings
	logger   *slog.Logger
	validate *validator.Validate
	observer Observer
}

// NewAssembler creates an assembler. A nil logger falls back to slog.Default.
func NewAssembler(settings Settings, logger *slog.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		settings: settings,
		logger:   logger,
		validate: validator.New(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Settings returns the view constants the assembler was built with.
func (a *Assembler) Settings() Settings { return a.settings }

// Compute assembles one view. Failures are *StageError values naming the
// failing stage; an empty table is a successful result with Empty set.
func (a *Assembler) Compute(kind Kind, data *Datasets, sel Selection) (*Result, error) {
	start := time.Now()
	res, err := a.compute(kind, data, sel)
	took := time.Since(start)
	a.observer.ObserveView(kind, took, err)

	if err != nil {
		a.logger.Warn("view failed",
			slog.String("view", string(kind)),
			slog.String("error", err.Error()))
		return nil, err
	}
	res.Empty = res.Table.Empty()
	if res.Merge != nil {
		a.observer.ObserveMerge(kind, *res.Merge)
	}
	a.logger.Debug("view computed",
		slog.String("view", string(kind)),
		slog.Int("rows", res.Table.Len()),
		slog.Duration("took", took))
	return res, nil
}

func (a *Assembler) compute(kind Kind, data *Datasets, sel Selection) (*Result, error) {
	p := pipeline{view: kind}
	if err := a.validate.Struct(sel); err != nil {
		return nil, p.fail(StageSelection, fmt.Errorf("%w: %w", ErrSelection, err))
	}

	switch kind {
	case KindGeo:
		return a.geo(p, data, sel)
	case KindTrend:
		return a.trend(p, data, sel)
	case KindAge:
		return a.age(p, data, sel)
	case KindIndustry:
		return a.industry(p, data, sel)
	}
	return nil, p.fail(StageSelection, fmt.Errorf("%w: %q", ErrUnknownView, kind))
}

// ComputeAll assembles every view independently; one failing view does not
// affect the others.
func (a *Assembler) ComputeAll(data *Datasets, sel Selection) []Outcome {
	out := make([]Outcome, 0, len(Kinds))
	for _, kind := range Kinds {
		res, err := a.Compute(kind, data, sel)
		out = append(out, Outcome{View: kind, Result: res, Err: err})
	}
	return out
}

func (a *Assembler) input(p pipeline, data *Datasets, name Dataset) (*engine.Table, error) {
	t, err := data.Table(name)
	if err != nil {
		return nil, p.fail(StageLoad, err)
	}
	return t, nil
}

// firstValue returns the first non-null value of column in t as text.
func firstValue(t *engine.Table, column string) (any, error) {
	values, err := engine.Distinct(t, column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("no values to choose from")
	}
	return values[0], nil
}
