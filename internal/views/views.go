package views

import (
	"fmt"

	"wagedash/internal/engine"
)

// Kind names a view.
type Kind string

const (
	KindGeo      Kind = "geo"
	KindTrend    Kind = "trend"
	KindAge      Kind = "age"
	KindIndustry Kind = "industry"
)

// Kinds lists every view in display order.
var Kinds = []Kind{KindGeo, KindTrend, KindAge, KindIndustry}

// ParseKind validates a view name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Dataset names an input table.
type Dataset string

const (
	DatasetNational Dataset = "national"
	DatasetRegional Dataset = "regional"
	DatasetIndustry Dataset = "industry"
	DatasetGeo      Dataset = "geo"
)

// Datasets is the immutable set of loaded tables shared by all view
// computations, plus the load error of every dataset that is missing.
type Datasets struct {
	tables map[Dataset]*engine.Table
	errs   map[Dataset]error
}

// NewDatasets wraps the output of engine.Loader.LoadAll.
func NewDatasets(tables map[string]*engine.Table, errs map[string]error) *Datasets {
	d := &Datasets{
		tables: make(map[Dataset]*engine.Table, len(tables)),
		errs:   make(map[Dataset]error, len(errs)),
	}
	for name, t := range tables {
		d.tables[Dataset(name)] = t
	}
	for name, err := range errs {
		d.errs[Dataset(name)] = err
	}
	return d
}

// Table returns a loaded dataset or the reason it is unavailable.
func (d *Datasets) Table(name Dataset) (*engine.Table, error) {
	if t, ok := d.tables[name]; ok {
		return t, nil
	}
	if err, ok := d.errs[name]; ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetUnavailable, name, err)
	}
	return nil, fmt.Errorf("%w: %s was not configured", ErrDatasetUnavailable, name)
}

// Rows reports the row count of every loaded dataset.
func (d *Datasets) Rows() map[Dataset]int {
	out := make(map[Dataset]int, len(d.tables))
	for name, t := range d.tables {
		out[name] = t.Len()
	}
	return out
}

// Errors returns the load errors keyed by dataset.
func (d *Datasets) Errors() map[Dataset]error {
	out := make(map[Dataset]error, len(d.errs))
	for k, v := range d.errs {
		out[k] = v
	}
	return out
}

// Selection is the caller-owned state that parameterizes a view. Zero
// fields are resolved to defaults from the data.
type Selection struct {
	Year   int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Region string `json:"region,omitempty" validate:"max=64"`
	Metric string `json:"metric,omitempty" validate:"max=128"`
	Age    string `json:"age,omitempty" validate:"max=64"`
}

// Result is one assembled view.
type Result struct {
	View      Kind               `json:"view"`
	Selection Selection          `json:"selection"`
	Table     *engine.Table      `json:"-"`
	Empty     bool               `json:"empty"`
	Merge     *engine.MergeStats `json:"merge,omitempty"`
	Map       *MapSettings       `json:"map,omitempty"`
	Scatter   *ScatterSettings   `json:"scatter,omitempty"`
	Bar       *BarSettings       `json:"bar,omitempty"`
	Range     *AxisRange         `json:"range,omitempty"`
}

// Outcome pairs a view with its result or failure.
type Outcome struct {
	View   Kind
	Result *Result
	Err    error
}
