package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Select projects t onto columns, in the given order.
func Select(t *Table, columns ...string) (*Table, error) {
	cols := make([]*Column, len(columns))
	for i, name := range columns {
		c, err := t.column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	out, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	// keep the row count for projections onto zero columns
	out.rows = t.rows
	return out, nil
}

// Rename returns t with columns renamed old -> new. Every old name must
// exist and the result must not contain duplicate names.
func Rename(t *Table, names map[string]string) (*Table, error) {
	for old := range names {
		if !t.Has(old) {
			return nil, fmt.Errorf("%w: cannot rename missing column %q", ErrSchema, old)
		}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		if to, ok := names[c.name]; ok {
			cols[i] = c.renamed(to)
			continue
		}
		cols[i] = c
	}
	return NewTable(cols...)
}

// SortBy orders rows by column ascending. The sort is stable and nulls go
// last. String columns compare lexically, numeric columns numerically.
func SortBy(t *Table, column string) (*Table, error) {
	c, err := t.column(column)
	if err != nil {
		return nil, err
	}
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		an, bn := c.IsNull(a), c.IsNull(b)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		if c.kind == KindString {
			return cmp.Compare(c.dict[c.codes[a]], c.dict[c.codes[b]])
		}
		av, _ := c.Float(a)
		bv, _ := c.Float(b)
		return cmp.Compare(av, bv)
	})
	return t.take(idx), nil
}

// WithColumn returns t with col appended.
func WithColumn(t *Table, col *Column) (*Table, error) {
	if t.Has(col.name) {
		return nil, fmt.Errorf("%w: column %q already exists", ErrSchema, col.name)
	}
	cols := make([]*Column, 0, len(t.cols)+1)
	cols = append(cols, t.cols...)
	cols = append(cols, col)
	return NewTable(cols...)
}
