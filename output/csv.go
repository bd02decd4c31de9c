package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/fitscat/frame"
)

// CSVFormatter outputs a frame as CSV
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the frame as CSV with a header row. Columns come out
// in frame order; the schema reconciliation upstream already
// guarantees every row has a cell (possibly null) for every column.
func (c *CSVFormatter) Format(f *frame.Frame) error {
	csvWriter := csv.NewWriter(c.writer)

	columns := f.Columns()
	if err := csvWriter.Write(columns); err != nil {
		return err
	}

	for r := 0; r < f.NumRows(); r++ {
		record := make([]string, len(columns))
		for i := range columns {
			record[i] = formatValue(f.Value(r, i))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}

// formatValue converts a cell value to a string for CSV and table
// output. Nulls become empty fields; image payloads are summarized
// rather than inlined.
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		// Sanitize against CSV injection by prefixing dangerous characters
		// that could trigger formula execution in spreadsheet applications
		if len(val) > 0 {
			firstChar := val[0]
			if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' || firstChar == '\n' || firstChar == '|' {
				// Escape existing single quotes and prefix with quote to prevent formula injection
				return "'" + strings.ReplaceAll(val, "'", "''")
			}
		}
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case []int64:
		return fmt.Sprintf("[%d values]", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
