package engine

import "fmt"

// minMax scans the non-null cells of a numeric column.
func minMax(c *Column) (lo, hi float64, ok bool) {
	for i := 0; i < c.Len(); i++ {
		v, valid := c.Float(i)
		if !valid {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

func numericColumn(t *Table, column string) (*Column, error) {
	c, err := t.column(column)
	if err != nil {
		return nil, err
	}
	if !c.kind.Numeric() {
		return nil, fmt.Errorf("%w: column %q is %s, want a numeric column", ErrSchema, column, c.kind)
	}
	return c, nil
}

// Max returns the largest non-null value of a numeric column. ok is false
// when the column has no values.
func Max(t *Table, column string) (v float64, ok bool, err error) {
	c, err := numericColumn(t, column)
	if err != nil {
		return 0, false, err
	}
	_, hi, ok := minMax(c)
	return hi, ok, nil
}

// Min returns the smallest non-null value of a numeric column.
func Min(t *Table, column string) (v float64, ok bool, err error) {
	c, err := numericColumn(t, column)
	if err != nil {
		return 0, false, err
	}
	lo, _, ok := minMax(c)
	return lo, ok, nil
}

// Distinct returns the non-null values of column in first-seen order.
func Distinct(t *Table, column string) ([]any, error) {
	c, err := t.column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []any
	for i := 0; i < t.rows; i++ {
		s, ok := c.Text(i)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, c.Value(i))
	}
	return out, nil
}
