// Package sampling implements scalable simple random sampling (SRS) over
// partitioned datasets, after Meng's algorithm
// (http://www.jmlr.org/proceedings/papers/v28/meng13a.pdf).
//
// The algorithm draws one or more disjoint random subsets of exact target
// size in two passes, without sorting or materializing the dataset. Each set
// gets two cutoffs over a per-record uniform key: a lower one below which
// records are accepted outright, and a higher one below which records are
// waitlisted. A reduce barrier merges the per-partition tallies, the
// waitlist is corrected to the exact size with an order-statistic selection,
// and a second pass labels the records that fall below the corrected cutoff.
//
// Both passes are pure functions of (seed, partition index, record order,
// thresholds), so re-executing a partition after a failure reproduces the
// identical classification. That determinism, not locking, is what makes the
// pipeline safe under the at-least-once retry semantics of batch execution
// substrates.
package sampling

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Yelp/yelp-sampling/dataset"
	"github.com/Yelp/yelp-sampling/stream"
)

// DefaultDelta is the default per-set error bound: the probability that the
// single-pass thresholds fail to bracket the target count. Smaller values
// widen the waitlist band.
const DefaultDelta = 5e-5

// Options tune a sampling run.
type Options struct {
	// Count is the population size. When zero, it is computed with one pass
	// over the dataset.
	Count int64

	// Delta is the error bound; defaults to DefaultDelta.
	Delta float64

	// Seed seeds the per-partition key generators. When zero, a wall-clock
	// derived seed is used; supply a seed for reproducible output. The seed
	// is threaded explicitly through every partition invocation and is never
	// read from ambient state inside the passes.
	Seed int64

	// Reproportion scales the requested sizes down proportionally when they
	// sum to more than the population, instead of failing.
	Reproportion bool

	// Concurrency bounds how many partitions the first pass evaluates in
	// parallel. Defaults to the number of CPUs.
	Concurrency int
}

// Sample draws the requested sets from the dataset. It runs the first
// (classification) pass eagerly, including the reduce barrier and the
// exact-size threshold refinement, then returns a lazily mapped dataset for
// the second pass: labeled records are produced only when the result is
// consumed, preserving the input partitioning.
//
// Records are labeled with at most one set. The returned report carries the
// resolved seed, thresholds and any advisories.
func Sample[T any](
	ctx context.Context,
	ds dataset.Dataset[T],
	sets []SetSpec,
	opts Options,
) (dataset.Dataset[Labeled[T]], *Report, error) {
	population := opts.Count
	if population == 0 {
		var err error
		population, err = dataset.Count(ctx, ds, dataset.WithConcurrency(opts.Concurrency))
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to count population")
		}
	}
	delta := opts.Delta
	if delta == 0 {
		delta = DefaultDelta
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().Unix()
	}

	targets, err := NormalizeSetSizes(sets, population, opts.Reproportion)
	if err != nil {
		return nil, nil, err
	}

	thresholds, err := InitialThresholds(targets, population, delta)
	if err != nil {
		return nil, nil, err
	}

	// Pass 1: classify every record, then merge the per-partition tallies.
	// The reduce is the only synchronization point between the passes.
	tallies := dataset.MapPartitionsWithIndex(ds, func(idx int, in stream.Stream[T]) stream.Stream[Tallies] {
		return classifyPartition(idx, in, thresholds, seed)
	})
	global, err := dataset.Reduce(ctx, tallies, MergeTallies, dataset.WithConcurrency(opts.Concurrency))
	if err != nil {
		return nil, nil, errors.Wrap(err, "classification pass failed")
	}

	finals, advisories := RefineThresholds(global, targets, thresholds)

	report := &Report{
		Seed:            seed,
		Population:      population,
		Sets:            targets,
		Initial:         thresholds,
		Final:           finals,
		WaitlistLengths: make(map[string]int64, len(global)),
		Advisories:      advisories,
	}
	for name, tally := range global {
		report.WaitlistLengths[name] = int64(len(tally.Waitlisted))
	}

	// Pass 2: lazily re-derive the keys and label accepted records.
	labeled := dataset.MapPartitionsWithIndex(ds, func(idx int, in stream.Stream[T]) stream.Stream[Labeled[T]] {
		return labelPartition(idx, in, finals, seed)
	})
	return labeled, report, nil
}
