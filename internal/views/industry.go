package views

import (
	"fmt"
	"slices"

	"wagedash/internal/engine"
)

// industry: industry rows for one year plus an x-axis bound of
// max(metric) + margin over that year.
func (a *Assembler) industry(p pipeline, data *Datasets, sel Selection) (*Result, error) {
	cols := a.settings.Columns

	industry, err := a.input(p, data, DatasetIndustry)
	if err != nil {
		return nil, err
	}

	if len(a.settings.Metrics) == 0 {
		return nil, p.fail(StageSelection, fmt.Errorf("%w: no metrics are configured", ErrSelection))
	}
	if sel.Metric == "" {
		sel.Metric = a.settings.Metrics[0]
	}
	if !slices.Contains(a.settings.Metrics, sel.Metric) {
		return nil, p.fail(StageSelection, fmt.Errorf("%w: metric %q is not one of %v", ErrSelection, sel.Metric, a.settings.Metrics))
	}
	if sel.Year == 0 {
		first, err := firstValue(industry, cols.Period)
		if err != nil {
			return nil, p.fail(StageSelection, fmt.Errorf("%w: year: %w", ErrSelection, err))
		}
		year, ok := first.(int64)
		if !ok {
			return nil, p.fail(StageSelection, fmt.Errorf("%w: column %q is not an integer year", engine.ErrSchema, cols.Period))
		}
		sel.Year = int(year)
	}

	t, err := engine.Filter(industry, cols.Period, sel.Year)
	if err != nil {
		return nil, p.fail(StageFilter, err)
	}

	res := &Result{View: p.view, Selection: sel, Table: t, Bar: a.settings.barSettings(sel.Metric)}
	hi, ok, err := engine.Max(t, sel.Metric)
	if err != nil {
		return nil, p.fail(StageBound, err)
	}
	if ok {
		res.Range = &AxisRange{Min: 0, Max: hi + a.settings.Margin}
	}
	return res, nil
}
