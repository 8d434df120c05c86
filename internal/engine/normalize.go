package engine

import "fmt"

// Normalize appends target holding (x - min) / (max - min) for the numeric
// column. min and max are taken over the non-null cells of t itself, so
// callers narrow t first when a smaller scope is wanted. Null cells stay null.
//
// An empty table, or a column without at least two distinct values, fails
// with ErrDegenerateRange.
func Normalize(t *Table, column, target string) (*Table, error) {
	src, err := t.column(column)
	if err != nil {
		return nil, err
	}
	if !src.kind.Numeric() {
		return nil, fmt.Errorf("%w: column %q is %s, want a numeric column", ErrSchema, column, src.kind)
	}
	if t.Has(target) {
		return nil, fmt.Errorf("%w: column %q already exists", ErrSchema, target)
	}

	lo, hi, ok := minMax(src)
	if !ok {
		return nil, fmt.Errorf("%w: column %q has no values", ErrDegenerateRange, column)
	}
	if hi <= lo {
		return nil, fmt.Errorf("%w: column %q has a single value %s", ErrDegenerateRange, column, formatFloat(lo))
	}

	span := hi - lo
	b := newColumnBuilder(target, KindFloat, t.rows)
	for i := 0; i < t.rows; i++ {
		v, ok := src.Float(i)
		if !ok {
			b.appendNull()
			continue
		}
		b.appendFloat((v - lo) / span)
	}

	cols := make([]*Column, 0, len(t.cols)+1)
	cols = append(cols, t.cols...)
	cols = append(cols, b.build())
	return NewTable(cols...)
}
