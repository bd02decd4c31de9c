// Package loader turns FITS files into rows of one aggregate table.
//
// BuildRecord decodes a single file into a one-row frame; the Ingest
// functions fan a file set out across workers, isolate per-file
// failures, and fold the survivors into a single schema-reconciled
// frame.
package loader

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vegasq/fitscat/catalog"
	"github.com/vegasq/fitscat/errors"
	"github.com/vegasq/fitscat/fits"
	"github.com/vegasq/fitscat/frame"
)

// Column names added to every record besides the header fields.
const (
	ColRaw      = "Raw"
	ColRawShape = "Raw Shape"
	ColFileName = "File Name"
	ColScanID   = "Scan ID"
)

const (
	planckConstant = 6.62607015e-34 // J s
	speedOfLight   = 299792458.0    // m/s
)

// qValue computes the scattering-vector magnitude from the incidence
// angle in degrees and the beam energy in the file's native eV:
// Q = 4*pi*sin(theta)/lambda with lambda = 1e10*h*c/E.
func qValue(thetaDeg, energy float64) float64 {
	lambda := 1e10 * planckConstant * speedOfLight / energy
	return 4 * math.Pi * math.Sin(thetaDeg*math.Pi/180) / lambda
}

// BuildRecord decodes one FITS file into a one-row frame: the
// requested header fields as float columns, the flattened image and
// its shape, and filename-derived metadata.
//
// An empty field list takes every numeric header card, with the raw
// card keyword as the column name. The field "Q" is never looked up
// in the header; it is computed from Sample Theta and Beamline
// Energy.
func BuildRecord(path string, fields []catalog.HeaderField) (*frame.Frame, error) {
	if !utf8.ValidString(path) {
		return nil, errors.Newf(errors.InvalidUtf8Path, "path is not valid UTF-8: %q", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".fits") {
		return nil, errors.Newf(errors.NotAFitsFile, "not a FITS file: %s", path)
	}

	ccd, err := fits.Open(path)
	if err != nil {
		return nil, err
	}

	cols := make([]frame.Column, 0, len(fields)+4)
	if len(fields) == 0 {
		for _, card := range ccd.Cards() {
			cols = append(cols, frame.Float64(card.Key, card.Value))
		}
	} else {
		for _, f := range fields {
			if f.Key == catalog.Q.Key {
				q, err := headerQ(ccd, path)
				if err != nil {
					return nil, err
				}
				cols = append(cols, frame.Float64(f.Label(), q))
				continue
			}
			v, ok := ccd.Value(f.Key)
			if !ok {
				return nil, errors.Newf(errors.MissingHeaderField, "%s is missing header field %q", path, f.Key)
			}
			cols = append(cols, frame.Float64(f.Label(), v))
		}
	}

	img := ccd.Image()
	name := filepath.Base(path)
	cols = append(cols,
		frame.Int64List(ColRaw, img.Data),
		frame.Int64List(ColRawShape, []int64{int64(img.Rows), int64(img.Cols)}),
		frame.String(ColFileName, name),
		frame.NullableInt64(ColScanID, parseScanID(name)),
	)

	return frame.New(cols...)
}

func headerQ(ccd *fits.CCD, path string) (float64, error) {
	theta, ok := ccd.Value(catalog.SampleTheta.Key)
	if !ok {
		return 0, errors.Newf(errors.MissingHeaderField, "%s is missing header field %q", path, catalog.SampleTheta.Key)
	}
	energy, ok := ccd.Value(catalog.BeamlineEnergy.Key)
	if !ok {
		return 0, errors.Newf(errors.MissingHeaderField, "%s is missing header field %q", path, catalog.BeamlineEnergy.Key)
	}
	return qValue(theta, energy), nil
}

// parseScanID extracts the run index from the trailing digit run of
// the file name's stem, e.g. "ZnPc_rot1-00042.fits" -> 42.
//
// The naming convention is advisory, not contractual: an unparsable
// name yields nil (a null Scan ID cell) and the record still
// succeeds. Pipelines relying on filename-derived ordering must check
// for nulls.
func parseScanID(name string) *int64 {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := len(stem)
	for i > 0 && stem[i-1] >= '0' && stem[i-1] <= '9' {
		i--
	}
	if i == len(stem) {
		return nil
	}
	id, err := strconv.ParseInt(stem[i:], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
