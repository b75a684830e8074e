package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	sampling "github.com/Yelp/yelp-sampling"
	"github.com/Yelp/yelp-sampling/textfile"
)

// splitFile is the YAML shape of --config: set sizes plus optional tuning.
// Sets given as a map are ordered by name for deterministic interval
// allocation; use repeated --set flags to control the order explicitly.
type splitFile struct {
	Sets         map[string]float64 `yaml:"sets"`
	Delta        float64            `yaml:"delta"`
	Seed         int64              `yaml:"seed"`
	Reproportion bool               `yaml:"reproportion"`
}

func newCmd() *cobra.Command {
	var (
		inputs       []string
		outputDir    string
		setFlags     []string
		configPath   string
		count        int64
		delta        float64
		seed         int64
		reproportion bool
		cache        bool
		concurrency  int
		logLevel     string
		logFormat    string
	)

	cmd := &cobra.Command{
		Use:   "yelp-sampling",
		Short: "Draw exact-size random subsets from newline-delimited record files",
		Long: `yelp-sampling draws one or more disjoint random subsets of exact target size
from large newline-delimited datasets using scalable simple random sampling:
two streaming passes, no sort, no full materialization.

Each input file is treated as one partition. Each target set is written to
<output-dir>/<set name>.txt.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel, logFormat)
			runID := uuid.NewString()[:8]
			logger = logger.With("run", runID)

			cfg := textfile.SplitConfig{
				Inputs:       inputs,
				OutputDir:    outputDir,
				Count:        count,
				Delta:        delta,
				Seed:         seed,
				Reproportion: reproportion,
				Cache:        cache,
				Concurrency:  concurrency,
			}

			if configPath != "" {
				fileCfg, err := loadSplitFile(configPath)
				if err != nil {
					return err
				}
				cfg.Sets = sampling.SetSpecsFromMap(fileCfg.Sets)
				if !cmd.Flags().Changed("delta") && fileCfg.Delta != 0 {
					cfg.Delta = fileCfg.Delta
				}
				if !cmd.Flags().Changed("seed") && fileCfg.Seed != 0 {
					cfg.Seed = fileCfg.Seed
				}
				if !cmd.Flags().Changed("reproportion") {
					cfg.Reproportion = fileCfg.Reproportion
				}
			}
			if len(setFlags) > 0 {
				sets, err := parseSetFlags(setFlags)
				if err != nil {
					return err
				}
				// Explicit --set flags take precedence over the config file
				cfg.Sets = sets
			}
			if len(cfg.Sets) == 0 {
				return errors.New("no target sets: use --set name=size or --config")
			}

			logger.Info("starting split",
				"inputs", len(cfg.Inputs),
				"sets", len(cfg.Sets),
				"cache", cfg.Cache,
			)

			start := time.Now()
			report, err := textfile.Split(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("split failed", "error", err)
				return err
			}

			printSummary(report, outputDir, time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "input file (repeatable; one partition per file)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for per-set output files")
	cmd.Flags().StringArrayVarP(&setFlags, "set", "s", nil, "target set as name=size (ratio in (0,1) or absolute count; repeatable)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML split config file")
	cmd.Flags().Int64Var(&count, "count", 0, "population size (computed with an extra pass when omitted)")
	cmd.Flags().Float64Var(&delta, "delta", sampling.DefaultDelta, "error bound: smaller widens the waitlist safety margin")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (wall-clock derived when omitted)")
	cmd.Flags().BoolVar(&reproportion, "reproportion", false, "scale set sizes down proportionally if they exceed the population")
	cmd.Flags().BoolVar(&cache, "cache", false, "keep input lines in memory between the two passes")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "partitions to classify in parallel (default: number of CPUs)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}

func newLogger(level, format string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	default:
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.Kitchen,
		})
	}
	return slog.New(handler)
}

func loadSplitFile(path string) (*splitFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	var cfg splitFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return &cfg, nil
}

// parseSetFlags parses repeated name=size flags, preserving flag order.
func parseSetFlags(flags []string) ([]sampling.SetSpec, error) {
	sets := make([]sampling.SetSpec, 0, len(flags))
	for _, flag := range flags {
		name, sizeStr, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --set %q, expected name=size", flag)
		}
		size, err := strconv.ParseFloat(sizeStr, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size in --set %q", flag)
		}
		sets = append(sets, sampling.SetSpec{Name: name, Size: size})
	}
	return sets, nil
}

func printSummary(report *sampling.Report, outputDir string, elapsed time.Duration) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Printf("Sampled %d sets from %d records in %s (seed %d)\n",
		len(report.Sets), report.Population, elapsed.Round(time.Millisecond), report.Seed)
	for _, set := range report.Sets {
		green.Printf("  %-12s", set.Name)
		fmt.Printf(" target %-10d -> %s\n", set.Size, filepath.Join(outputDir, set.Name+".txt"))
	}
	for _, advisory := range report.Advisories {
		yellow.Printf("  advisory: %s\n", advisory)
	}
}
