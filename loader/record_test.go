package loader

import (
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vegasq/fitscat/catalog"
	"github.com/vegasq/fitscat/errors"
)

func TestBuildRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-00042.fits")
	writeCCD(t, path, xrrCards())

	f, err := BuildRecord(path, catalog.XRR.Fields())
	if err != nil {
		t.Fatalf("BuildRecord() error = %v", err)
	}
	if f.NumRows() != 1 {
		t.Fatalf("NumRows() = %d, want 1", f.NumRows())
	}

	want := []string{
		"Sample Theta [deg]",
		"CCD Theta [deg]",
		"Beamline Energy [eV]",
		"Beam Current [mA]",
		"EPU Polarization [deg]",
		"Horizontal Exit Slit Size [um]",
		"Higher Order Suppressor [mm]",
		"EXPOSURE [s]",
		ColRaw,
		ColRawShape,
		ColFileName,
		ColScanID,
	}
	if got := f.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}

	if got := f.Value(0, 0); got != 0.5 {
		t.Errorf("Sample Theta = %v, want 0.5", got)
	}
	if got := f.Value(0, 8); !reflect.DeepEqual(got, []int64{10, 20, 30, 40}) {
		t.Errorf("Raw = %v, want [10 20 30 40]", got)
	}
	if got := f.Value(0, 9); !reflect.DeepEqual(got, []int64{2, 2}) {
		t.Errorf("Raw Shape = %v, want [2 2]", got)
	}
	if got := f.Value(0, 10); got != "run-00042.fits" {
		t.Errorf("File Name = %v", got)
	}
	if got := f.Value(0, 11); got != int64(42) {
		t.Errorf("Scan ID = %v, want 42", got)
	}
}

func TestBuildRecordMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-00001.fits")
	writeCCD(t, path, xrrCards("Beamline Energy"))

	_, err := BuildRecord(path, catalog.XRR.Fields())
	if !errors.Is(err, errors.MissingHeaderField) {
		t.Fatalf("BuildRecord() error = %v, want MissingHeaderField", err)
	}
	// The user should learn which field and which file.
	if msg := err.Error(); !strings.Contains(msg, "Beamline Energy") || !strings.Contains(msg, path) {
		t.Errorf("error %q should name the field and the file", msg)
	}
}

func TestBuildRecordWrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	_, err := BuildRecord(path, nil)
	if !errors.Is(err, errors.NotAFitsFile) {
		t.Fatalf("BuildRecord() error = %v, want NotAFitsFile", err)
	}
}

func TestBuildRecordAllCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-00001.fits")
	writeCCD(t, path, xrrCards())

	f, err := BuildRecord(path, nil)
	if err != nil {
		t.Fatalf("BuildRecord() error = %v", err)
	}
	// All-cards mode uses raw keywords as column names.
	for _, name := range []string{"Sample Theta", "EXPOSURE", ColRaw, ColFileName} {
		if !f.HasColumn(name) {
			t.Errorf("missing column %q in all-cards mode; have %v", name, f.Columns())
		}
	}
}

func TestBuildRecordExplicitQ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-00001.fits")
	writeCCD(t, path, xrrCards())

	f, err := BuildRecord(path, []catalog.HeaderField{catalog.Q})
	if err != nil {
		t.Fatalf("BuildRecord() error = %v", err)
	}
	got, ok := f.Value(0, 0).(float64)
	if !ok {
		t.Fatalf("Q cell = %v, want float64", f.Value(0, 0))
	}
	if want := qValue(0.5, 500); got != want {
		t.Errorf("Q = %v, want %v", got, want)
	}
}

func TestBuildRecordExplicitQMissingTheta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-00001.fits")
	writeCCD(t, path, xrrCards("Sample Theta"))

	_, err := BuildRecord(path, []catalog.HeaderField{catalog.Q})
	if !errors.Is(err, errors.MissingHeaderField) {
		t.Fatalf("BuildRecord() error = %v, want MissingHeaderField", err)
	}
}

func TestQValueReference(t *testing.T) {
	// theta = 0.5 deg, E = 500 eV, recomputed from the stated formula
	// with the same physical constants.
	const h = 6.62607015e-34
	const c = 299792458.0
	lambda := 1e10 * h * c / 500.0
	want := 4 * math.Pi * math.Sin(0.5*math.Pi/180) / lambda

	got := qValue(0.5, 500)
	if rel := math.Abs(got-want) / math.Abs(want); rel > 1e-9 {
		t.Errorf("qValue(0.5, 500) = %g, want %g (rel err %g)", got, want, rel)
	}
}

func TestParseScanID(t *testing.T) {
	id := func(v int64) *int64 { return &v }
	tests := []struct {
		name string
		want *int64
	}{
		{name: "run-00042.fits", want: id(42)},
		{name: "ZnPc_rot1-00123.fits", want: id(123)},
		{name: "123.fits", want: id(123)},
		{name: "sample.fits", want: nil},
		{name: "run-12a.fits", want: nil},
		{name: ".fits", want: nil},
	}
	for _, test := range tests {
		got := parseScanID(test.name)
		switch {
		case got == nil && test.want == nil:
		case got == nil || test.want == nil:
			t.Errorf("parseScanID(%q) = %v, want %v", test.name, got, test.want)
		case *got != *test.want:
			t.Errorf("parseScanID(%q) = %d, want %d", test.name, *got, *test.want)
		}
	}
}
