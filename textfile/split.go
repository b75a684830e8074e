package textfile

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	sampling "github.com/Yelp/yelp-sampling"
	"github.com/Yelp/yelp-sampling/dataset"
)

// SplitConfig configures a file-to-file sampling run.
type SplitConfig struct {
	// Inputs are the newline-delimited record files to sample from; each
	// file is one partition.
	Inputs []string

	// OutputDir receives one <set name>.txt file per target set.
	OutputDir string

	// Sets are the target sets, in interval-allocation order.
	Sets []sampling.SetSpec

	// Cache keeps input lines in memory between the two passes.
	Cache bool

	Count        int64
	Delta        float64
	Seed         int64
	Reproportion bool
	Concurrency  int
}

// Split samples the configured sets out of the input files and writes each
// set's records to its own output file. Advisories are logged, not fatal.
func Split(ctx context.Context, cfg SplitConfig, logger *slog.Logger) (*sampling.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("textfile: no input files")
	}

	var opts []Option
	if cfg.Cache {
		opts = append(opts, WithCache())
	}
	ds := NewDataset(cfg.Inputs, opts...)

	labeled, report, err := sampling.Sample(ctx, ds, cfg.Sets, sampling.Options{
		Count:        cfg.Count,
		Delta:        cfg.Delta,
		Seed:         cfg.Seed,
		Reproportion: cfg.Reproportion,
		Concurrency:  cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("classification pass complete",
		"population", report.Population,
		"seed", report.Seed,
	)
	for _, set := range report.Sets {
		logger.Info("set thresholds refined",
			"set", set.Name,
			"target", set.Size,
			"waitlisted", report.WaitlistLengths[set.Name],
		)
	}
	for _, advisory := range report.Advisories {
		logger.Warn("sampling advisory", "advisory", advisory.String())
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output dir")
	}

	writers := make(map[string]*bufio.Writer, len(report.Sets))
	files := make([]*os.File, 0, len(report.Sets))
	defer func() {
		for _, f := range files {
			if err := f.Close(); err != nil {
				logger.Warn("error closing output file", "path", f.Name(), "error", err)
			}
		}
	}()
	for _, set := range report.Sets {
		path := filepath.Join(cfg.OutputDir, set.Name+".txt")
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create output file for set %q", set.Name)
		}
		files = append(files, f)
		writers[set.Name] = bufio.NewWriter(f)
	}

	// Second pass: stream every labeled record to its set's file
	err = dataset.Consume(ctx, labeled, func(l sampling.Labeled[string]) error {
		w := writers[l.Set]
		if _, err := w.WriteString(l.Record); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		return nil, errors.Wrap(err, "labeling pass failed")
	}

	for name, w := range writers {
		if err := w.Flush(); err != nil {
			return nil, errors.Wrapf(err, "failed to flush output for set %q", name)
		}
	}
	return report, nil
}
