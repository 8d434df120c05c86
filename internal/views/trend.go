package views

import (
	"fmt"

	"wagedash/internal/engine"
)

// trend: national and regional all-ages wages side by side, one row per
// period, ascending.
func (a *Assembler) trend(p pipeline, data *Datasets, sel Selection) (*Result, error) {
	cols := a.settings.Columns

	national, err := a.input(p, data, DatasetNational)
	if err != nil {
		return nil, err
	}
	regional, err := a.input(p, data, DatasetRegional)
	if err != nil {
		return nil, err
	}

	nat, err := engine.Filter(national, cols.Age, cols.AllAges)
	if err != nil {
		return nil, p.fail(StageFilter, err)
	}
	reg, err := engine.Filter(regional, cols.Age, cols.AllAges)
	if err != nil {
		return nil, p.fail(StageFilter, err)
	}

	if sel.Region == "" {
		first, err := firstValue(reg, cols.Region)
		if err != nil {
			return nil, p.fail(StageSelection, fmt.Errorf("%w: region: %w", ErrSelection, err))
		}
		sel.Region = fmt.Sprint(first)
	}
	if reg, err = engine.Filter(reg, cols.Region, sel.Region); err != nil {
		return nil, p.fail(StageFilter, err)
	}

	if nat, err = engine.Select(nat, cols.Period, cols.Wage); err != nil {
		return nil, p.fail(StageProject, err)
	}
	if nat, err = engine.Rename(nat, map[string]string{cols.Wage: cols.NationalWage}); err != nil {
		return nil, p.fail(StageProject, err)
	}
	if reg, err = engine.Select(reg, cols.Period, cols.Wage); err != nil {
		return nil, p.fail(StageProject, err)
	}

	t, stats, err := engine.Merge(nat, reg, cols.Period)
	if err != nil {
		return nil, p.fail(StageMerge, err)
	}
	if t, err = engine.Rename(t, map[string]string{cols.Wage: cols.RegionalWage}); err != nil {
		return nil, p.fail(StageProject, err)
	}
	if t, err = engine.Select(t, cols.Period, cols.NationalWage, cols.RegionalWage); err != nil {
		return nil, p.fail(StageProject, err)
	}
	if t, err = engine.SortBy(t, cols.Period); err != nil {
		return nil, p.fail(StageSort, err)
	}

	return &Result{View: p.view, Selection: sel, Table: t, Merge: &stats}, nil
}
