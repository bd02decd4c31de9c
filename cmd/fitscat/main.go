// Command fitscat loads beamline CCD FITS files into one table.
//
// It scans a directory (optionally filtered by a name glob) or takes
// explicit file paths, decodes each file concurrently, and prints the
// aggregated table as JSON Lines, CSV, or an aligned preview. Files
// that fail to decode are reported on stderr and skipped; the batch
// only fails as a whole when nothing could be loaded at all.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vegasq/fitscat/catalog"
	"github.com/vegasq/fitscat/loader"
	"github.com/vegasq/fitscat/output"
)

var (
	dirFlag     string
	patternFlag string
	typeFlag    string
	fieldsFlag  string
	formatFlag  string
	workersFlag int
	verboseFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "fitscat [flags] [file.fits ...]",
		Short: "Load beamline FITS files into one table",
		Long: `fitscat ingests CCD FITS files and produces one table: one row per
file, columns for the selected header fields, the detector image with
its shape, filename-derived identifiers, and the derived scattering
vector Q.`,
		Example: `  fitscat --dir ./scans --type xrr -f csv
  fitscat --dir ./scans --pattern 'xrr-*' -f table
  fitscat --fields "Sample Theta,Beamline Energy" run-00001.fits run-00002.fits`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().StringVar(&dirFlag, "dir", "", "directory to scan for .fits files")
	root.Flags().StringVar(&patternFlag, "pattern", "", "glob matched against file names inside --dir")
	root.Flags().StringVarP(&typeFlag, "type", "t", "xrr", "experiment type: xrr, xrs, or other")
	root.Flags().StringVar(&fieldsFlag, "fields", "", "comma-separated header fields (overrides --type)")
	root.Flags().StringVarP(&formatFlag, "format", "f", "jsonl", "output format: jsonl, csv, table")
	root.Flags().IntVar(&workersFlag, "workers", 0, "decode workers (0 = number of CPUs)")
	root.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "per-file debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fields, err := resolveFields()
	if err != nil {
		return err
	}

	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts := loader.Options{Workers: workersFlag, Logger: logger}

	var res *loader.Result
	switch {
	case len(args) > 0 && dirFlag != "":
		return fmt.Errorf("pass either file arguments or --dir, not both")
	case len(args) > 0:
		res, err = loader.Ingest(ctx, args, fields, opts)
	case dirFlag != "" && patternFlag != "":
		res, err = loader.IngestPattern(ctx, dirFlag, patternFlag, fields, opts)
	case dirFlag != "":
		res, err = loader.IngestDirectory(ctx, dirFlag, fields, opts)
	default:
		return fmt.Errorf("missing input: pass .fits files or --dir (see --help)")
	}
	if err != nil {
		return err
	}

	for _, fe := range res.Failed {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", fe)
	}
	if n := len(res.Failed); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files skipped\n", n, n+res.Frame.NumRows())
	}

	return formatter.Format(res.Frame)
}

func resolveFields() ([]catalog.HeaderField, error) {
	if fieldsFlag != "" {
		var fields []catalog.HeaderField
		for _, name := range strings.Split(fieldsFlag, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			fields = append(fields, catalog.FieldByName(name))
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("--fields is empty")
		}
		return fields, nil
	}
	t, err := catalog.Parse(typeFlag)
	if err != nil {
		return nil, err
	}
	return t.Fields(), nil
}

func resolveFormatter() (output.Formatter, error) {
	switch formatFlag {
	case "json", "jsonl":
		return output.NewJSONLFormatter(os.Stdout), nil
	case "csv":
		return output.NewCSVFormatter(os.Stdout), nil
	case "table":
		return output.NewTableFormatter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want jsonl, csv, or table)", formatFlag)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
