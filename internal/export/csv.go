package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"wagedash/internal/engine"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes t with a header row. bom prefixes a UTF-8 byte order mark
// so spreadsheet applications detect the encoding.
func WriteCSV(w io.Writer, t *engine.Table, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	record := make([]string, len(t.Columns()))
	for r := 0; r < t.Len(); r++ {
		for c, v := range t.Row(r) {
			record[c] = FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
