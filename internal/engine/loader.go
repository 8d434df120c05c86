package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source describes one input dataset.
type Source struct {
	Name     string
	Path     string
	Encoding string // WHATWG label, e.g. "shift_jis"; empty means UTF-8
	Sheet    string // .xlsx only; defaults to the first sheet
	Types    map[string]Kind
	Rename   map[string]string
}

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	replacement = []byte(string(utf8.RuneError))
)

// Cells that mean "no value" in published statistics tables.
var nullTokens = map[string]struct{}{
	"":    {},
	"-":   {},
	"―":   {},
	"…":   {},
	"***": {},
	"NA":  {},
	"N/A": {},
}

// --- 1. CELL PARSERS ---

func isNullToken(s string) bool {
	_, ok := nullTokens[s]
	return ok
}

// thousandsGrouped matches numbers written with comma digit grouping.
var thousandsGrouped = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ungroup removes well-formed thousands separators. Any other comma means
// the cell is not a number.
func ungroup(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	if !thousandsGrouped.MatchString(s) {
		return "", false
	}
	return strings.ReplaceAll(s, ",", ""), true
}

// parseInt parses "1,234" -> 1234
func parseInt(s string) (int64, bool) {
	s, ok := ungroup(s)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// parseFloat parses "1,234.5" -> 1234.5; non-finite values are rejected
func parseFloat(s string) (float64, bool) {
	s, ok := ungroup(s)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func inferKind(cells []string) Kind {
	kind := KindInt
	seen := false
	for _, s := range cells {
		if isNullToken(s) {
			continue
		}
		seen = true
		if kind == KindInt {
			if _, ok := parseInt(s); ok {
				continue
			}
			kind = KindFloat
		}
		if _, ok := parseFloat(s); !ok {
			return KindString
		}
	}
	if !seen {
		return KindString
	}
	return kind
}

// --- 2. DECODING ---

func resolveEncoding(label string) (encoding.Encoding, error) {
	if strings.TrimSpace(label) == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrDecode, label)
	}
	return enc, nil
}

// decode converts raw bytes to UTF-8. Any byte sequence the decoder has to
// replace is reported as ErrDecode instead of being passed through.
func decode(raw []byte, label string) ([]byte, error) {
	enc, err := resolveEncoding(label)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: input is not valid utf-8", ErrDecode)
		}
		return bytes.TrimPrefix(raw, utf8BOM), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, label, err)
	}
	if bytes.Contains(out, replacement) && !bytes.Contains(raw, replacement) {
		return nil, fmt.Errorf("%w: input is not valid %s (at byte %d of output)", ErrDecode, label, bytes.Index(out, replacement))
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// --- 3. RECORD READERS ---

func readCSV(src Source) ([][]string, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	text, err := decode(raw, src.Encoding)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %w", ErrSchema, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return records, nil
}

func readWorkbook(src Source) ([][]string, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	sheet := src.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSchema)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrSchema, sheet, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	// GetRows trims trailing empty cells; pad back to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("%w: sheet %q row %d has %d cells, header has %d", ErrSchema, sheet, i+1, len(row), width)
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}

// --- 4. TABLE BUILDING ---

// buildTable types each column and returns the count of hinted cells that
// failed to parse and were stored as null.
func buildTable(records [][]string, types map[string]Kind) (*Table, int, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, 0, fmt.Errorf("%w: missing header row", ErrSchema)
	}
	header := records[0]
	rows := records[1:]

	// Spreadsheet exports often end every line with a comma; drop trailing
	// columns that have neither a name nor any value.
	width := len(header)
	for width > 0 && emptyColumn(records, width-1) {
		width--
	}
	header = header[:width]
	if width == 0 {
		return nil, 0, fmt.Errorf("%w: missing header row", ErrSchema)
	}

	malformed := 0
	cols := make([]*Column, len(header))
	cells := make([]string, len(rows))
	for c, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, 0, fmt.Errorf("%w: empty header in column %d", ErrSchema, c+1)
		}
		for r, row := range rows {
			cells[r] = strings.TrimSpace(row[c])
		}
		kind, hinted := types[name]
		if !hinted {
			kind = inferKind(cells)
		}

		b := newColumnBuilder(name, kind, len(rows))
		for _, s := range cells {
			if isNullToken(s) {
				b.appendNull()
				continue
			}
			switch kind {
			case KindString:
				b.appendString(s)
			case KindInt:
				if v, ok := parseInt(s); ok {
					b.appendInt(v)
				} else {
					b.appendNull()
					malformed++
				}
			default:
				if v, ok := parseFloat(s); ok {
					b.appendFloat(v)
				} else {
					b.appendNull()
					malformed++
				}
			}
		}
		cols[c] = b.build()
	}

	t, err := NewTable(cols...)
	if err != nil {
		return nil, 0, err
	}
	return t, malformed, nil
}

func emptyColumn(records [][]string, c int) bool {
	for _, row := range records {
		if strings.TrimSpace(row[c]) != "" {
			return false
		}
	}
	return true
}

// --- 5. LOADER ---

// Loader reads Sources into Tables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads one source. Errors wrap ErrIO, ErrDecode or ErrSchema.
func (l *Loader) Load(src Source) (*Table, error) {
	start := time.Now()

	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(src.Path), ".xlsx") {
		records, err = readWorkbook(src)
	} else {
		records, err = readCSV(src)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s (%s): %w", src.Name, src.Path, err)
	}

	t, malformed, err := buildTable(records, src.Types)
	if err != nil {
		return nil, fmt.Errorf("load %s (%s): %w", src.Name, src.Path, err)
	}
	if len(src.Rename) > 0 {
		if t, err = Rename(t, src.Rename); err != nil {
			return nil, fmt.Errorf("load %s (%s): %w", src.Name, src.Path, err)
		}
	}

	if malformed > 0 {
		l.logger.Warn("malformed cells stored as null",
			slog.String("dataset", src.Name),
			slog.Int("cells", malformed))
	}
	l.logger.Info("dataset loaded",
		slog.String("dataset", src.Name),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.cols)),
		slog.Duration("took", time.Since(start)))
	return t, nil
}

// LoadAll loads every source independently. A failing source is reported
// in errs and does not stop the others.
func (l *Loader) LoadAll(sources []Source) (tables map[string]*Table, errs map[string]error) {
	tables = make(map[string]*Table, len(sources))
	errs = make(map[string]error)
	for _, src := range sources {
		t, err := l.Load(src)
		if err != nil {
			l.logger.Error("dataset failed to load",
				slog.String("dataset", src.Name),
				slog.String("error", err.Error()))
			errs[src.Name] = err
			continue
		}
		tables[src.Name] = t
	}
	return tables, errs
}
