package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
)

// defaultImage is the 2x2 detector frame the fixtures carry.
var defaultImage = []int16{10, 20, 30, 40}

// xrrCards returns a full set of XRR header cards, minus any keys
// listed in omit.
func xrrCards(omit ...string) []fitsio.Card {
	all := []fitsio.Card{
		{Name: "Sample Theta", Value: 0.5},
		{Name: "CCD Theta", Value: 1.0},
		{Name: "Beamline Energy", Value: 500.0},
		{Name: "Beam Current", Value: 400.0},
		{Name: "EPU Polarization", Value: 0.0},
		{Name: "Horizontal Exit Slit Size", Value: 30.0},
		{Name: "Higher Order Suppressor", Value: 11.0},
		{Name: "EXPOSURE", Value: 0.1},
	}
	skip := make(map[string]bool, len(omit))
	for _, key := range omit {
		skip[key] = true
	}
	kept := all[:0]
	for _, card := range all {
		if !skip[card.Name] {
			kept = append(kept, card)
		}
	}
	return kept
}

// writeCCD writes a beamline-shaped FITS file: metadata in the
// primary header, a filler HDU, and the detector frame at HDU 2.
func writeCCD(t *testing.T, path string, cards []fitsio.Card) {
	t.Helper()

	w, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.Fatalf("failed to close %s: %v", path, err)
		}
	}()

	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatalf("failed to create FITS file: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			t.Fatalf("failed to close FITS file: %v", err)
		}
	}()

	prim := fitsio.NewImage(8, nil)
	if err := prim.Header().Append(cards...); err != nil {
		t.Fatalf("failed to append cards: %v", err)
	}
	if err := f.Write(prim); err != nil {
		t.Fatalf("failed to write primary HDU: %v", err)
	}
	_ = prim.Close()

	fill := fitsio.NewImage(8, nil)
	if err := f.Write(fill); err != nil {
		t.Fatalf("failed to write filler HDU: %v", err)
	}
	_ = fill.Close()

	data := append([]int16{}, defaultImage...)
	img := fitsio.NewImage(16, []int{2, 2})
	if err := img.Write(&data); err != nil {
		t.Fatalf("failed to write image data: %v", err)
	}
	if err := f.Write(img); err != nil {
		t.Fatalf("failed to write image HDU: %v", err)
	}
	_ = img.Close()
}

// writeCCDDir writes n full XRR fixtures named run-0000<i>.fits into
// dir and returns their paths.
func writeCCDDir(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		path := filepath.Join(dir, fixtureName(i))
		writeCCD(t, path, xrrCards())
		paths = append(paths, path)
	}
	return paths
}

func fixtureName(i int) string {
	return fmt.Sprintf("run-%05d.fits", i)
}
