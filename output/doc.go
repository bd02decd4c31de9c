// Package output provides formatters for writing an aggregate frame
// to various output formats.
//
// This package defines the Formatter interface and provides
// implementations for JSON Lines, CSV, and a human-readable table
// preview. All formatters work on a *frame.Frame and emit columns in
// frame order.
//
// # Supported Formats
//
//   - JSON Lines: One JSON object per row (suitable for streaming)
//   - CSV: Comma-separated values with header row
//   - Table: aligned preview with image columns summarized
//
// # Basic Usage
//
//	formatter := output.NewJSONLFormatter(os.Stdout)
//	if err := formatter.Format(res.Frame); err != nil {
//	    log.Fatal(err)
//	}
//
// # Type Handling
//
// Cell values are float64, int64, string, or []int64 (image data);
// null cells become JSON null, an empty CSV field, and an empty table
// cell. The CSV and table formatters summarize []int64 cells as
// "[n values]" instead of inlining megapixel image payloads.
package output
