// Package catalog maps experiment types to the ordered set of header
// fields extracted for that type.
//
// The set of experiment types is closed: the beamline acquisition
// modes it mirrors change with the instrument software, not at
// runtime, so the mapping is a static table with lookup methods
// rather than a registry.
package catalog

import (
	"strings"

	"github.com/vegasq/fitscat/errors"
)

// ExperimentType identifies one acquisition mode.
type ExperimentType int

const (
	// XRR is X-ray reflectivity: sample angle scans with the full
	// motor and slit state recorded per frame.
	XRR ExperimentType = iota
	// XRS is X-ray spectroscopy: energy scans, only the beamline
	// energy matters.
	XRS
	// Other carries no implied fields; the caller supplies an
	// explicit list, or all numeric header cards are taken.
	Other
)

// HeaderField identifies one scalar metadata quantity stored in a
// file's primary header.
type HeaderField struct {
	// Key is the card keyword as stored in the file.
	Key string
	// Name is the display name.
	Name string
	// Unit is the physical unit, without brackets.
	Unit string
}

// Label returns the column name used in the aggregate table,
// e.g. "Sample Theta [deg]".
func (f HeaderField) Label() string {
	if f.Unit == "" {
		return f.Name
	}
	return f.Name + " [" + f.Unit + "]"
}

// Known header fields. Keys match the keywords the beamline software
// writes; EXPOSURE is uppercase in the files.
var (
	SampleTheta            = HeaderField{Key: "Sample Theta", Name: "Sample Theta", Unit: "deg"}
	CCDTheta               = HeaderField{Key: "CCD Theta", Name: "CCD Theta", Unit: "deg"}
	BeamlineEnergy         = HeaderField{Key: "Beamline Energy", Name: "Beamline Energy", Unit: "eV"}
	BeamCurrent            = HeaderField{Key: "Beam Current", Name: "Beam Current", Unit: "mA"}
	EPUPolarization        = HeaderField{Key: "EPU Polarization", Name: "EPU Polarization", Unit: "deg"}
	HorizontalExitSlitSize = HeaderField{Key: "Horizontal Exit Slit Size", Name: "Horizontal Exit Slit Size", Unit: "um"}
	HigherOrderSuppressor  = HeaderField{Key: "Higher Order Suppressor", Name: "Higher Order Suppressor", Unit: "mm"}
	Exposure               = HeaderField{Key: "EXPOSURE", Name: "EXPOSURE", Unit: "s"}

	// Q is special-cased by the record builder: it is computed from
	// SampleTheta and BeamlineEnergy, never looked up in the header.
	Q = HeaderField{Key: "Q", Name: "Q", Unit: "A^-1"}
)

var xrrFields = []HeaderField{
	SampleTheta,
	CCDTheta,
	BeamlineEnergy,
	BeamCurrent,
	EPUPolarization,
	HorizontalExitSlitSize,
	HigherOrderSuppressor,
	Exposure,
}

var xrsFields = []HeaderField{
	BeamlineEnergy,
}

// Parse converts a case-insensitive experiment type token into an
// ExperimentType. Unrecognized tokens are a hard error at this
// boundary.
func Parse(s string) (ExperimentType, error) {
	switch strings.ToLower(s) {
	case "xrr":
		return XRR, nil
	case "xrs":
		return XRS, nil
	case "other":
		return Other, nil
	default:
		return Other, errors.Newf(errors.InvalidExperimentType, "invalid experiment type: %q (want xrr, xrs, or other)", s)
	}
}

// String returns the canonical lowercase token.
func (t ExperimentType) String() string {
	switch t {
	case XRR:
		return "xrr"
	case XRS:
		return "xrs"
	default:
		return "other"
	}
}

// Fields returns the ordered list of header fields required for the
// experiment type. Pure and total; Other resolves to nil.
func (t ExperimentType) Fields() []HeaderField {
	switch t {
	case XRR:
		return xrrFields
	case XRS:
		return xrsFields
	default:
		return nil
	}
}

// FieldByName resolves a user-supplied field name against the known
// catalog, matching the card keyword, the display name, or the full
// label, case-insensitively. Unknown names resolve to a unit-less
// field with the given name as its key, so explicit field lists can
// name cards the catalog does not know about.
func FieldByName(name string) HeaderField {
	for _, f := range append(append([]HeaderField{}, xrrFields...), Q) {
		if strings.EqualFold(name, f.Key) ||
			strings.EqualFold(name, f.Name) ||
			strings.EqualFold(name, f.Label()) {
			return f
		}
	}
	return HeaderField{Key: name, Name: name}
}
