package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"wagedash/internal/engine"
)

// ArrowMIME is the media type of an Arrow IPC stream.
const ArrowMIME = "application/vnd.apache.arrow.stream"

// ArrowSchema maps table columns to nullable Arrow fields.
func ArrowSchema(t *engine.Table) *arrow.Schema {
	names := t.Columns()
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		col, _ := t.Column(name)
		fields[i] = arrow.Field{Name: name, Type: arrowType(col.Kind()), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k engine.Kind) arrow.DataType {
	switch k {
	case engine.KindInt:
		return arrow.PrimitiveTypes.Int64
	case engine.KindFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// WriteArrow writes t as a single-batch Arrow IPC stream.
func WriteArrow(w io.Writer, t *engine.Table) error {
	mem := memory.NewGoAllocator()
	schema := ArrowSchema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, name := range t.Columns() {
		col, _ := t.Column(name)
		switch fb := b.Field(i).(type) {
		case *array.StringBuilder:
			for r := 0; r < t.Len(); r++ {
				if s, ok := col.Text(r); ok {
					fb.Append(s)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Int64Builder:
			for r := 0; r < t.Len(); r++ {
				if v, ok := col.Int(r); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Float64Builder:
			for r := 0; r < t.Len(); r++ {
				if v, ok := col.Float(r); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		default:
			return fmt.Errorf("arrow export: unsupported builder %T for column %q", fb, name)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("arrow export: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("arrow export: %w", err)
	}
	return nil
}
