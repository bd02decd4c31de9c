// Package frame provides the aggregate table the ingestion pipeline
// produces: an ordered collection of named, typed, nullable columns
// backed by Apache Arrow.
//
// Frames are immutable; Merge and Derive return new frames. Column
// operations are driven by column name, never by position, which is
// what makes Merge safe under any reduction order.
package frame

import (
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"

	"github.com/vegasq/fitscat/errors"
)

var mem = memory.NewGoAllocator()

// Column pairs a schema field with its values. Build columns with the
// typed constructors below and assemble them with New.
type Column struct {
	Field arrow.Field
	Array arrow.Array
}

// Frame is an immutable table. Rows correspond 1:1 to successfully
// ingested files.
type Frame struct {
	rec arrow.Record
}

// New assembles columns into a frame. All columns must have the same
// length and distinct names.
func New(cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.TableConstructionFailure, "frame needs at least one column")
	}

	fields := make([]arrow.Field, len(cols))
	arrays := make([]arrow.Array, len(cols))
	seen := make(map[string]struct{}, len(cols))
	n := cols[0].Array.Len()

	for i, col := range cols {
		if _, dup := seen[col.Field.Name]; dup {
			return nil, errors.Newf(errors.TableConstructionFailure, "duplicate column name: %s", col.Field.Name)
		}
		seen[col.Field.Name] = struct{}{}
		if col.Array.Len() != n {
			return nil, errors.Newf(errors.TableConstructionFailure,
				"column %s has %d rows, want %d", col.Field.Name, col.Array.Len(), n)
		}
		fields[i] = col.Field
		arrays[i] = col.Array
	}

	schema := arrow.NewSchema(fields, nil)
	return &Frame{rec: array.NewRecord(schema, arrays, int64(n))}, nil
}

// Float64 builds a float64 column.
func Float64(name string, vals ...float64) Column {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{
		Field: arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		Array: b.NewArray(),
	}
}

// Int64 builds an int64 column.
func Int64(name string, vals ...int64) Column {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{
		Field: arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		Array: b.NewArray(),
	}
}

// NullableInt64 builds an int64 column where nil entries become
// nulls.
func NullableInt64(name string, vals ...*int64) Column {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	for _, v := range vals {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
	}
	return Column{
		Field: arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		Array: b.NewArray(),
	}
}

// String builds a string column.
func String(name string, vals ...string) Column {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{
		Field: arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true},
		Array: b.NewArray(),
	}
}

// Int64List builds a variable-length list<int64> column, one list per
// row.
func Int64List(name string, rows ...[]int64) Column {
	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int64Builder)
	for _, row := range rows {
		b.Append(true)
		vb.AppendValues(row, nil)
	}
	return Column{
		Field: arrow.Field{Name: name, Type: arrow.ListOf(arrow.PrimitiveTypes.Int64), Nullable: true},
		Array: b.NewArray(),
	}
}

// Record exposes the underlying Arrow record.
func (f *Frame) Record() arrow.Record {
	return f.rec
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return int(f.rec.NumRows())
}

// Columns returns the column names in schema order.
func (f *Frame) Columns() []string {
	fields := f.rec.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		names[i] = fld.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool {
	return len(f.rec.Schema().FieldIndices(name)) > 0
}

// Column returns the named column's values.
func (f *Frame) Column(name string) (arrow.Array, bool) {
	idx := f.rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, false
	}
	return f.rec.Column(idx[0]), true
}

// Value returns the cell at (row, column index): float64, int64,
// string, or []int64 for list cells, and nil for nulls.
func (f *Frame) Value(row, col int) interface{} {
	arr := f.rec.Column(col)
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.String:
		return a.Value(row)
	case *array.List:
		offsets := a.Offsets()
		values := a.ListValues().(*array.Int64)
		start, end := offsets[row], offsets[row+1]
		out := make([]int64, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, values.Value(int(i)))
		}
		return out
	default:
		return nil
	}
}
