package output

import (
	"io"

	"github.com/vegasq/fitscat/frame"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to write a frame in the target
// format and SetOutput to change the output destination.
type Formatter interface {
	// Format writes the frame in the formatter's specific format
	Format(f *frame.Frame) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}
