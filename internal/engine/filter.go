package engine

// Filter keeps the rows whose column cell equals any of values. Values are
// compared in canonical text form, so 2019 matches an int cell 2019 and a
// string cell "2019". Null cells never match. No match yields an empty table.
func Filter(t *Table, column string, values ...any) (*Table, error) {
	return selectRows(t, column, values, true)
}

// Exclude keeps the rows whose column cell equals none of values. Null cells
// are kept.
func Exclude(t *Table, column string, values ...any) (*Table, error) {
	return selectRows(t, column, values, false)
}

func selectRows(t *Table, column string, values []any, keep bool) (*Table, error) {
	c, err := t.column(column)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[keyText(v)] = struct{}{}
	}

	var match func(i int) bool
	if c.kind == KindString {
		// Resolve against the dictionary once and compare codes in the loop.
		codes := make(map[int32]struct{}, len(want))
		for id, s := range c.dict {
			if _, ok := want[s]; ok {
				codes[int32(id)] = struct{}{}
			}
		}
		match = func(i int) bool {
			_, ok := codes[c.codes[i]]
			return ok
		}
	} else {
		match = func(i int) bool {
			s, ok := c.Text(i)
			if !ok {
				return false
			}
			_, hit := want[s]
			return hit
		}
	}

	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if c.IsNull(i) {
			if !keep {
				idx = append(idx, i)
			}
			continue
		}
		if match(i) == keep {
			idx = append(idx, i)
		}
	}
	return t.take(idx), nil
}
