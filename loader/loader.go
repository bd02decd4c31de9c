package loader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vegasq/fitscat/catalog"
	"github.com/vegasq/fitscat/errors"
	"github.com/vegasq/fitscat/frame"
)

// Options configures an ingestion batch.
type Options struct {
	// Workers bounds decode parallelism. Zero means GOMAXPROCS.
	Workers int
	// Logger receives per-file debug/warn events and the batch
	// summary. Nil means no logging.
	Logger *zap.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// FileError records one skipped file and why it was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Result is a completed batch: one row per successfully ingested
// file, plus the files that were skipped.
type Result struct {
	Frame  *frame.Frame
	Failed []FileError
}

// Ingest decodes the given files concurrently and folds the
// successes into one frame. A failing file is recorded in
// Result.Failed and excluded from the frame; the batch only fails as
// a whole when a listed file does not exist, the list is empty, or
// every file fails.
//
// Paths are processed in sorted order, so the result's column order
// is the same on every run over the same file set regardless of
// which decode finishes first.
func Ingest(ctx context.Context, paths []string, fields []catalog.HeaderField, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.NoFilesMatched, "no files to ingest")
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, errors.Newf(errors.FileNotFound, "file does not exist: %s", p)
		}
	}

	sorted := append([]string{}, paths...)
	sort.Strings(sorted)

	log := opts.logger()

	// Per-index slots: each worker writes only its own, so there is
	// no shared mutable state and no lock on the hot path.
	frames := make([]*frame.Frame, len(sorted))
	fails := make([]error, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range sorted {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := BuildRecord(sorted[i], fields)
			if err != nil {
				fails[i] = err
				log.Warn("file skipped", zap.String("path", sorted[i]), zap.Error(err))
				return nil
			}
			frames[i] = f
			log.Debug("file decoded", zap.String("path", sorted[i]), zap.Int("columns", len(f.Columns())))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "ingestion canceled")
	}

	var (
		ok     []*frame.Frame
		failed []FileError
	)
	for i := range sorted {
		if frames[i] != nil {
			ok = append(ok, frames[i])
			continue
		}
		failed = append(failed, FileError{Path: sorted[i], Err: fails[i]})
	}
	if len(ok) == 0 {
		return nil, errors.Newf(errors.AllFilesFailed, "all %d candidate files failed ingestion", len(sorted))
	}

	merged, err := frame.Reduce(ok)
	if err != nil {
		return nil, err
	}
	merged = attachQ(merged)

	log.Info("ingestion complete",
		zap.Int("rows", merged.NumRows()),
		zap.Int("failed", len(failed)))
	return &Result{Frame: merged, Failed: failed}, nil
}

// IngestDirectory ingests every .fits file directly inside dir.
func IngestDirectory(ctx context.Context, dir string, fields []catalog.HeaderField, opts Options) (*Result, error) {
	paths, err := listDir(dir, "")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Newf(errors.NoFilesMatched, "no .fits files in %s", dir)
	}
	return Ingest(ctx, paths, fields, opts)
}

// IngestPattern ingests the .fits files inside dir whose names match
// the shell-style pattern. The pattern is matched against file names
// only, never against full paths, and the walk does not descend into
// subdirectories.
func IngestPattern(ctx context.Context, dir, pattern string, fields []catalog.HeaderField, opts Options) (*Result, error) {
	paths, err := listDir(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Newf(errors.NoFilesMatched, "no files match pattern %q in %s", pattern, dir)
	}
	return Ingest(ctx, paths, fields, opts)
}

// Update appends rows for files that appeared in dir after res was
// produced. Files already accounted for (rows plus recorded
// failures) are not re-decoded; fewer files on disk than accounted
// for means the directory is out of sync with the loaded data.
func Update(ctx context.Context, res *Result, dir string, fields []catalog.HeaderField, opts Options) (*Result, error) {
	paths, err := listDir(dir, "")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	loaded := res.Frame.NumRows() + len(res.Failed)
	switch {
	case len(paths) < loaded:
		return nil, errors.Newf(errors.TableConstructionFailure,
			"%s has %d files but %d already loaded; restart the load", dir, len(paths), loaded)
	case len(paths) == loaded:
		return res, nil
	}

	fresh, err := Ingest(ctx, paths[loaded:], fields, opts)
	if err != nil {
		return nil, err
	}
	merged, err := frame.Merge(res.Frame, fresh.Frame)
	if err != nil {
		return nil, err
	}
	failed := append(append([]FileError{}, res.Failed...), fresh.Failed...)
	return &Result{Frame: merged, Failed: failed}, nil
}

// attachQ appends the derived Q column when both the angle and
// energy columns survived the merge. Applied once over the final
// table, not per file, so it sees the reconciled column set.
// All-cards mode names columns by raw keyword, so both spellings are
// tried.
func attachQ(f *frame.Frame) *frame.Frame {
	pairs := [][2]string{
		{catalog.SampleTheta.Label(), catalog.BeamlineEnergy.Label()},
		{catalog.SampleTheta.Key, catalog.BeamlineEnergy.Key},
	}
	for _, pair := range pairs {
		derived := f.Derive(
			catalog.Q.Label(),
			[]string{pair[0], pair[1]},
			func(vals []float64) float64 { return qValue(vals[0], vals[1]) },
		)
		if derived != f {
			return derived
		}
	}
	return f
}

// listDir returns the paths of regular .fits files directly inside
// dir, optionally filtered by a name-only glob pattern.
func listDir(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapCode(err, errors.DirectoryNotFound, "directory not found: "+dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".fits") {
			continue
		}
		if pattern != "" {
			match, err := filepath.Match(pattern, name)
			if err != nil {
				return nil, errors.Newf(errors.NoFilesMatched, "invalid pattern %q: %v", pattern, err)
			}
			if !match {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
