package views

import (
	"fmt"

	"wagedash/internal/engine"
)

// Options are the choices a front end offers for a Selection.
type Options struct {
	Years       []int64  `json:"years"`
	Regions     []string `json:"regions"`
	Metrics     []string `json:"metrics"`
	AgeBrackets []string `json:"age_brackets"`
}

// Options lists selectable values. Datasets that failed to load contribute
// nothing; the other lists are still filled.
func (a *Assembler) Options(data *Datasets) Options {
	cols := a.settings.Columns
	opts := Options{
		Years:       []int64{},
		Regions:     []string{},
		Metrics:     append([]string(nil), a.settings.Metrics...),
		AgeBrackets: []string{},
	}

	if t, err := data.Table(DatasetIndustry); err == nil {
		if values, err := engine.Distinct(t, cols.Period); err == nil {
			for _, v := range values {
				if y, ok := v.(int64); ok {
					opts.Years = append(opts.Years, y)
				}
			}
		}
	}
	if t, err := data.Table(DatasetRegional); err == nil {
		if t, err = engine.Filter(t, cols.Age, cols.AllAges); err == nil {
			opts.Regions = distinctText(t, cols.Region)
		}
	}
	if t, err := data.Table(DatasetNational); err == nil {
		if t, err = engine.Exclude(t, cols.Age, cols.AllAges); err == nil {
			opts.AgeBrackets = distinctText(t, cols.Age)
		}
	}
	return opts
}

func distinctText(t *engine.Table, column string) []string {
	values, err := engine.Distinct(t, column)
	if err != nil {
		return []string{}
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}
