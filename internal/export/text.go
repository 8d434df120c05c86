package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"wagedash/internal/engine"
)

// FormatValue renders a cell for display. Nulls are empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteText writes t as a pipe table aligned by display width, so full-width
// characters line up in a terminal. Numeric columns are right aligned.
func WriteText(w io.Writer, t *engine.Table) error {
	names := t.Columns()
	numeric := make([]bool, len(names))
	widths := make([]int, len(names))
	cells := make([][]string, t.Len())

	for c, name := range names {
		col, _ := t.Column(name)
		numeric[c] = col.Kind().Numeric()
		widths[c] = max(runewidth.StringWidth(name), 3)
	}
	for r := range cells {
		row := t.Row(r)
		cells[r] = make([]string, len(names))
		for c, v := range row {
			s := FormatValue(v)
			cells[r][c] = s
			widths[c] = max(widths[c], runewidth.StringWidth(s))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string, align bool) {
		sb.WriteString("|")
		for c, s := range row {
			sb.WriteString(" ")
			if align && numeric[c] {
				sb.WriteString(runewidth.FillLeft(s, widths[c]))
			} else {
				sb.WriteString(runewidth.FillRight(s, widths[c]))
			}
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(names, false)
	sep := make([]string, len(names))
	for c := range sep {
		sep[c] = strings.Repeat("-", widths[c])
	}
	writeRow(sep, false)
	for _, row := range cells {
		writeRow(row, true)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
