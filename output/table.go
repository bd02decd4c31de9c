package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/fitscat/frame"
)

// TableFormatter outputs a frame as an aligned human-readable table
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the frame as an aligned table. Image cells are
// summarized as "[n values]"; null cells are left empty.
func (t *TableFormatter) Format(f *frame.Frame) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(f.Columns())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	columns := f.Columns()
	for r := 0; r < f.NumRows(); r++ {
		record := make([]string, len(columns))
		for i := range columns {
			record[i] = formatValue(f.Value(r, i))
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
