package views

import "wagedash/internal/engine"

// age: national rows per (period, age bracket) without the all-ages total.
func (a *Assembler) age(p pipeline, data *Datasets, sel Selection) (*Result, error) {
	cols := a.settings.Columns

	national, err := a.input(p, data, DatasetNational)
	if err != nil {
		return nil, err
	}
	t, err := engine.Exclude(national, cols.Age, cols.AllAges)
	if err != nil {
		return nil, p.fail(StageFilter, err)
	}
	if sel.Age != "" {
		if t, err = engine.Filter(t, cols.Age, sel.Age); err != nil {
			return nil, p.fail(StageFilter, err)
		}
	}

	return &Result{View: p.view, Selection: sel, Table: t, Scatter: a.settings.scatterSettings()}, nil
}
