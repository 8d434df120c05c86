package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage type of a column.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a config type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text":
		return KindString, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "number", "double":
		return KindFloat, nil
	}
	return 0, fmt.Errorf("%w: unknown column type %q", ErrSchema, s)
}

// Numeric reports whether the kind holds numbers.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column holds one typed column in Struct-of-Arrays form.
// String columns are dictionary encoded; numeric columns carry a validity mask.
type Column struct {
	name string
	kind Kind

	// KindString: index into dict, -1 for null
	codes []int32
	dict  []string

	ints   []int64
	floats []float64
	valid  []bool
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column storage kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.kind {
	case KindString:
		return len(c.codes)
	case KindInt:
		return len(c.ints)
	default:
		return len(c.floats)
	}
}

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool {
	if c.kind == KindString {
		return c.codes[i] < 0
	}
	return !c.valid[i]
}

// Text returns the canonical text form of cell i, used for key equality.
func (c *Column) Text(i int) (string, bool) {
	if c.IsNull(i) {
		return "", false
	}
	switch c.kind {
	case KindString:
		return c.dict[c.codes[i]], true
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10), true
	default:
		return formatFloat(c.floats[i]), true
	}
}

// Float returns cell i as a float64. ok is false for nulls and string cells.
func (c *Column) Float(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.kind {
	case KindInt:
		return float64(c.ints[i]), true
	case KindFloat:
		return c.floats[i], true
	}
	return 0, false
}

// Int returns cell i of an int column.
func (c *Column) Int(i int) (int64, bool) {
	if c.kind != KindInt || !c.valid[i] {
		return 0, false
	}
	return c.ints[i], true
}

// Value returns cell i as string, int64, float64 or nil.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.kind {
	case KindString:
		return c.dict[c.codes[i]]
	case KindInt:
		return c.ints[i]
	default:
		return c.floats[i]
	}
}

// renamed shares storage with c; columns are never mutated after build.
func (c *Column) renamed(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// take gathers the cells at idx into a new column. The dictionary is shared.
func (c *Column) take(idx []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case KindString:
		out.dict = c.dict
		out.codes = make([]int32, len(idx))
		for k, i := range idx {
			out.codes[k] = c.codes[i]
		}
	case KindInt:
		out.ints = make([]int64, len(idx))
		out.valid = make([]bool, len(idx))
		for k, i := range idx {
			out.ints[k] = c.ints[i]
			out.valid[k] = c.valid[i]
		}
	default:
		out.floats = make([]float64, len(idx))
		out.valid = make([]bool, len(idx))
		for k, i := range idx {
			out.floats[k] = c.floats[i]
			out.valid[k] = c.valid[i]
		}
	}
	return out
}

// columnBuilder appends cells to a column under construction.
type columnBuilder struct {
	col    *Column
	lookup map[string]int32
}

func newColumnBuilder(name string, kind Kind, capacity int) *columnBuilder {
	b := &columnBuilder{col: &Column{name: name, kind: kind}}
	switch kind {
	case KindString:
		b.col.codes = make([]int32, 0, capacity)
		b.lookup = make(map[string]int32)
	case KindInt:
		b.col.ints = make([]int64, 0, capacity)
		b.col.valid = make([]bool, 0, capacity)
	default:
		b.col.floats = make([]float64, 0, capacity)
		b.col.valid = make([]bool, 0, capacity)
	}
	return b
}

func (b *columnBuilder) appendString(s string) {
	id, ok := b.lookup[s]
	if !ok {
		id = int32(len(b.col.dict))
		b.col.dict = append(b.col.dict, s)
		b.lookup[s] = id
	}
	b.col.codes = append(b.col.codes, id)
}

func (b *columnBuilder) appendInt(v int64) {
	b.col.ints = append(b.col.ints, v)
	b.col.valid = append(b.col.valid, true)
}

func (b *columnBuilder) appendFloat(v float64) {
	b.col.floats = append(b.col.floats, v)
	b.col.valid = append(b.col.valid, true)
}

func (b *columnBuilder) appendNull() {
	switch b.col.kind {
	case KindString:
		b.col.codes = append(b.col.codes, -1)
	case KindInt:
		b.col.ints = append(b.col.ints, 0)
		b.col.valid = append(b.col.valid, false)
	default:
		b.col.floats = append(b.col.floats, 0)
		b.col.valid = append(b.col.valid, false)
	}
}

func (b *columnBuilder) build() *Column { return b.col }

// StringColumn builds a string column. Used by tests and callers assembling
// tables in memory.
func StringColumn(name string, values ...string) *Column {
	b := newColumnBuilder(name, KindString, len(values))
	for _, v := range values {
		b.appendString(v)
	}
	return b.build()
}

// IntColumn builds an int column.
func IntColumn(name string, values ...int64) *Column {
	b := newColumnBuilder(name, KindInt, len(values))
	for _, v := range values {
		b.appendInt(v)
	}
	return b.build()
}

// FloatColumn builds a float column. NaN cells are stored as null.
func FloatColumn(name string, values ...float64) *Column {
	b := newColumnBuilder(name, KindFloat, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			b.appendNull()
			continue
		}
		b.appendFloat(v)
	}
	return b.build()
}

// Table is an immutable, ordered collection of typed rows with named columns.
// Every operation in this package returns a new Table.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable assembles columns into a table. Columns must have equal lengths
// and distinct names.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, c.name)
		}
		t.index[c.name] = i
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrSchema, c.name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// MustTable is NewTable for static fixtures; it panics on error.
func MustTable(cols ...*Column) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the row count.
func (t *Table) Len() int { return t.rows }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.rows == 0 }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) column(name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
	}
	return c, nil
}

// Row returns row i as values in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for k, c := range t.cols {
		out[k] = c.Value(i)
	}
	return out
}

// Records returns every row in column order.
func (t *Table) Records() [][]any {
	out := make([][]any, t.rows)
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Get returns the value at row i of the named column, nil when missing.
func (t *Table) Get(i int, name string) any {
	c, ok := t.Column(name)
	if !ok {
		return nil
	}
	return c.Value(i)
}

func (t *Table) take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(idx)
	}
	return &Table{cols: cols, index: t.index, rows: len(idx)}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// keyText renders a filter value in the same canonical form as Column.Text.
func keyText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
