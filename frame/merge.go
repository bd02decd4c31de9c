package frame

import (
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"

	"github.com/vegasq/fitscat/errors"
)

// Merge concatenates two frames row-wise, reconciling their schemas
// first: a column present on only one side is added to the other
// filled with nulls, so the result's column set is the union of both
// inputs and no column is ever dropped.
//
// Column order in the result is first-seen order: a's columns, then
// b's columns that a lacks. Padding is driven purely by column-name
// membership, never by position, which makes Merge associative: any
// parenthesization over an ordered sequence of frames yields the same
// column set and the same rows.
func Merge(a, b *Frame) (*Frame, error) {
	fields := make([]arrow.Field, 0, len(a.rec.Schema().Fields()))
	index := make(map[string]int)

	for _, fld := range a.rec.Schema().Fields() {
		index[fld.Name] = len(fields)
		fields = append(fields, fld)
	}
	for _, fld := range b.rec.Schema().Fields() {
		if at, ok := index[fld.Name]; ok {
			if !arrow.TypeEqual(fields[at].Type, fld.Type) {
				return nil, errors.Newf(errors.TableConstructionFailure,
					"column %s has conflicting types %s and %s", fld.Name, fields[at].Type, fld.Type)
			}
			continue
		}
		index[fld.Name] = len(fields)
		fields = append(fields, fld)
	}

	cols := make([]arrow.Array, len(fields))
	for i, fld := range fields {
		left := sideColumn(a, fld)
		right := sideColumn(b, fld)
		merged, err := array.Concatenate([]arrow.Array{left, right}, mem)
		if err != nil {
			return nil, errors.WrapCode(err, errors.TableConstructionFailure, "concatenating column "+fld.Name)
		}
		cols[i] = merged
	}

	schema := arrow.NewSchema(fields, nil)
	rows := a.rec.NumRows() + b.rec.NumRows()
	return &Frame{rec: array.NewRecord(schema, cols, rows)}, nil
}

// sideColumn returns the frame's column for the field, or an all-null
// column of the field's type when the frame lacks it.
func sideColumn(f *Frame, fld arrow.Field) arrow.Array {
	if col, ok := f.Column(fld.Name); ok {
		return col
	}
	return array.MakeArrayOfNull(mem, fld.Type, f.NumRows())
}

// Reduce folds an ordered sequence of frames into one by
// divide-and-conquer merging. The fold order is fixed by slice
// position, so the result's column order is deterministic no matter
// in which order the frames were produced.
func Reduce(frames []*Frame) (*Frame, error) {
	switch len(frames) {
	case 0:
		return nil, errors.New(errors.TableConstructionFailure, "no frames to reduce")
	case 1:
		return frames[0], nil
	}
	mid := len(frames) / 2
	left, err := Reduce(frames[:mid])
	if err != nil {
		return nil, err
	}
	right, err := Reduce(frames[mid:])
	if err != nil {
		return nil, err
	}
	return Merge(left, right)
}
