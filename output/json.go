package output

import (
	"encoding/json"
	"io"

	"github.com/vegasq/fitscat/frame"
)

// JSONLFormatter outputs a frame as JSON Lines
type JSONLFormatter struct {
	writer io.Writer
}

// NewJSONLFormatter creates a new JSON Lines formatter
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the frame as JSON Lines (one JSON object per row).
// Null cells are emitted as JSON null; image cells as arrays.
func (j *JSONLFormatter) Format(f *frame.Frame) error {
	encoder := json.NewEncoder(j.writer)
	columns := f.Columns()
	for r := 0; r < f.NumRows(); r++ {
		row := make(map[string]interface{}, len(columns))
		for c, name := range columns {
			row[name] = f.Value(r, c)
		}
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
