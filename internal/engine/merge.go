package engine

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/zeebo/xxh3"
)

// MergeStats reports how many rows an inner join produced and dropped.
type MergeStats struct {
	Rows           int `json:"rows"`
	LeftUnmatched  int `json:"left_unmatched"`
	RightUnmatched int `json:"right_unmatched"`
}

// keyCells returns the key texts of row i. ok is false if any cell is null.
func keyCells(cols []*Column, i int) ([]string, bool) {
	parts := make([]string, len(cols))
	for k, c := range cols {
		s, ok := c.Text(i)
		if !ok {
			return nil, false
		}
		parts[k] = s
	}
	return parts, true
}

// hashKey hashes a key tuple. Each part is length-prefixed so that tuples
// whose concatenations coincide still hash apart.
func hashKey(parts []string) uint64 {
	if len(parts) == 1 {
		return xxh3.HashString(parts[0])
	}
	h := xxh3.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.WriteString(p)
	}
	return h.Sum64()
}

// Merge inner-joins left and right on the key columns. Key cells match by
// canonical text equality; null keys never match. Every matching row pair is
// emitted, in left order and then right order within a key group. The output
// holds all left columns followed by the non-key columns of right.
//
// Non-key columns present on both sides are rejected; rename one side first.
func Merge(left, right *Table, keys ...string) (*Table, MergeStats, error) {
	var stats MergeStats
	if len(keys) == 0 {
		return nil, stats, fmt.Errorf("%w: merge needs at least one key column", ErrSchema)
	}

	isKey := make(map[string]bool, len(keys))
	lk := make([]*Column, len(keys))
	rk := make([]*Column, len(keys))
	for i, k := range keys {
		var err error
		if lk[i], err = left.column(k); err != nil {
			return nil, stats, fmt.Errorf("left side: %w", err)
		}
		if rk[i], err = right.column(k); err != nil {
			return nil, stats, fmt.Errorf("right side: %w", err)
		}
		isKey[k] = true
	}

	var rightCols []*Column
	for _, c := range right.cols {
		if isKey[c.name] {
			continue
		}
		if left.Has(c.name) {
			return nil, stats, fmt.Errorf("%w: column %q exists on both sides of the merge", ErrSchema, c.name)
		}
		rightCols = append(rightCols, c)
	}

	// Hash index over right keys; buckets hold row numbers and every hit is
	// verified cell by cell to rule out collisions.
	rightKeys := make([][]string, right.rows)
	buckets := make(map[uint64][]int, right.rows)
	for j := 0; j < right.rows; j++ {
		key, ok := keyCells(rk, j)
		if !ok {
			continue
		}
		rightKeys[j] = key
		h := hashKey(key)
		buckets[h] = append(buckets[h], j)
	}

	var li, ri []int
	matchedRight := make([]bool, right.rows)
	for i := 0; i < left.rows; i++ {
		key, ok := keyCells(lk, i)
		if !ok {
			stats.LeftUnmatched++
			continue
		}
		matched := false
		for _, j := range buckets[hashKey(key)] {
			if !slices.Equal(rightKeys[j], key) {
				continue
			}
			li = append(li, i)
			ri = append(ri, j)
			matchedRight[j] = true
			matched = true
		}
		if !matched {
			stats.LeftUnmatched++
		}
	}
	for j := range matchedRight {
		if !matchedRight[j] {
			stats.RightUnmatched++
		}
	}

	cols := make([]*Column, 0, len(left.cols)+len(rightCols))
	for _, c := range left.cols {
		cols = append(cols, c.take(li))
	}
	for _, c := range rightCols {
		cols = append(cols, c.take(ri))
	}
	out, err := NewTable(cols...)
	if err != nil {
		return nil, stats, err
	}
	stats.Rows = out.rows
	return out, stats, nil
}
