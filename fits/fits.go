// Package fits adapts the FITS container format to the ingestion
// pipeline.
//
// It uses the astrogo/fitsio library to open files and normalizes any
// supported image encoding into a single canonical int64 matrix, so
// downstream code never sees the source element type.
package fits

import (
	"os"

	"github.com/astrogo/fitsio"

	"github.com/vegasq/fitscat/errors"
)

// Candidate image HDU positions. The beamline CCD software writes the
// detector frame at HDU 2; older acquisition modes put it in the
// primary HDU. Exactly these two positions are tried, in this order.
var imageHDUCandidates = [2]int{2, 0}

// Image is the canonical in-memory form of one detector payload:
// a 2-D matrix flattened row-major, plus its extents.
//
// Invariant: len(Data) == Rows*Cols.
type Image struct {
	Data []int64
	Rows int
	Cols int
}

// Card is one header keyword/value pair with a numeric value.
type Card struct {
	Key   string
	Value float64
}

// CCD holds the decoded contents of one FITS file: the primary
// header's cards and the detector image. It is fully decoded by Open;
// the underlying file is not kept open.
type CCD struct {
	Path  string
	cards map[string]float64
	order []string
	image Image
}

// Open reads and decodes the FITS file at path.
//
// HDU 0 must hold the primary metadata header. The image payload is
// sought at the canonical position first, then the fallback position;
// if neither holds an image, Open fails with MissingImageHDU. Any
// lower-level container failure is wrapped as ContainerDecodeFailure.
func Open(path string) (*CCD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapCode(err, errors.ContainerDecodeFailure, "opening "+path)
	}
	defer func() { _ = f.Close() }()

	fit, err := fitsio.Open(f)
	if err != nil {
		return nil, errors.WrapCode(err, errors.ContainerDecodeFailure, "decoding "+path)
	}
	defer func() { _ = fit.Close() }()

	hdus := fit.HDUs()
	if len(hdus) == 0 {
		return nil, errors.Newf(errors.ContainerDecodeFailure, "no HDUs in %s", path)
	}

	ccd := &CCD{
		Path:  path,
		cards: make(map[string]float64),
	}

	hdr := hdus[0].Header()
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		v, ok := asFloat(card.Value)
		if !ok {
			continue
		}
		if _, dup := ccd.cards[key]; !dup {
			ccd.order = append(ccd.order, key)
		}
		ccd.cards[key] = v
	}

	img, err := findImage(hdus, path)
	if err != nil {
		return nil, err
	}
	ccd.image = *img

	return ccd, nil
}

// Value returns the numeric value of the named header card.
func (c *CCD) Value(key string) (float64, bool) {
	v, ok := c.cards[key]
	return v, ok
}

// Cards returns all numeric header cards in header order. Cards whose
// values are not numeric (strings, booleans) are not included.
func (c *CCD) Cards() []Card {
	out := make([]Card, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Card{Key: key, Value: c.cards[key]})
	}
	return out
}

// Image returns the decoded detector frame.
func (c *CCD) Image() Image {
	return c.image
}

func findImage(hdus []fitsio.HDU, path string) (*Image, error) {
	for _, pos := range imageHDUCandidates {
		if pos >= len(hdus) {
			continue
		}
		img, ok := hdus[pos].(fitsio.Image)
		if !ok {
			continue
		}
		hdr := img.Header()
		axes := hdr.Axes()
		if len(axes) != 2 || axes[0] <= 0 || axes[1] <= 0 {
			continue
		}
		decoded, err := decodeImage(img, axes, path)
		if err != nil {
			return nil, err
		}
		return decoded, nil
	}
	return nil, errors.Newf(errors.MissingImageHDU, "no image HDU found in %s", path)
}

// decodeImage widens the source element type to the canonical int64.
// NAXIS1 is the column count, NAXIS2 the row count; float sources
// truncate toward zero.
func decodeImage(img fitsio.Image, axes []int, path string) (*Image, error) {
	cols, rows := axes[0], axes[1]
	n := rows * cols

	var (
		data []int64
		err  error
	)
	switch bitpix := img.Header().Bitpix(); bitpix {
	case 8:
		data, err = readWiden[int8](img, n)
	case 16:
		data, err = readWiden[int16](img, n)
	case 32:
		data, err = readWiden[int32](img, n)
	case -32:
		data, err = readWiden[float32](img, n)
	case -64:
		data, err = readWiden[float64](img, n)
	default:
		return nil, errors.Newf(errors.UnsupportedImageEncoding, "unsupported image encoding BITPIX=%d in %s", bitpix, path)
	}
	if err != nil {
		return nil, errors.WrapCode(err, errors.ContainerDecodeFailure, "reading image from "+path)
	}
	if len(data) != n {
		return nil, errors.Newf(errors.ContainerDecodeFailure, "image in %s has %d elements, want %dx%d", path, len(data), rows, cols)
	}

	return &Image{Data: data, Rows: rows, Cols: cols}, nil
}

func readWiden[T int8 | int16 | int32 | float32 | float64](img fitsio.Image, n int) ([]int64, error) {
	raw := make([]T, 0, n)
	if err := img.Read(&raw); err != nil {
		return nil, err
	}
	data := make([]int64, len(raw))
	for i, v := range raw {
		data[i] = int64(v)
	}
	return data, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	default:
		return 0, false
	}
}
