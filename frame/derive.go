package frame

import (
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
)

// Derive appends one computed float64 column, evaluating fn per row
// over the named float64 input columns. It is a pure transform: the
// receiver is unmodified and the result shares its column data.
//
// The frame is returned unchanged when the name is already taken or
// any input column is missing or not float64. Rows where any input is
// null get a null output.
func (f *Frame) Derive(name string, inputs []string, fn func(vals []float64) float64) *Frame {
	if f.HasColumn(name) {
		return f
	}

	in := make([]*array.Float64, len(inputs))
	for i, input := range inputs {
		col, ok := f.Column(input)
		if !ok {
			return f
		}
		fcol, ok := col.(*array.Float64)
		if !ok {
			return f
		}
		in[i] = fcol
	}

	b := array.NewFloat64Builder(mem)
	defer b.Release()
	vals := make([]float64, len(in))
	for row := 0; row < f.NumRows(); row++ {
		null := false
		for i, col := range in {
			if col.IsNull(row) {
				null = true
				break
			}
			vals[i] = col.Value(row)
		}
		if null {
			b.AppendNull()
			continue
		}
		b.Append(fn(vals))
	}

	fields := append([]arrow.Field{}, f.rec.Schema().Fields()...)
	fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	cols := append([]arrow.Array{}, f.rec.Columns()...)
	cols = append(cols, b.NewArray())

	schema := arrow.NewSchema(fields, nil)
	return &Frame{rec: array.NewRecord(schema, cols, f.rec.NumRows())}
}
