package sampling

import (
	"context"

	"github.com/Yelp/yelp-sampling/internal/randkey"
	"github.com/Yelp/yelp-sampling/stream"
)

// Labeled pairs a sampled record with the name of the set it was drawn into.
type Labeled[T any] struct {
	Set    string
	Record T
}

// classifyPartition is the first pass over one partition: it reseeds the key
// sequence for the partition, draws one key per record in record order, and
// buckets each record per set into accepted, waitlisted or rejected. The
// result stream yields exactly one Tallies value.
//
// Classification is a pure function of (seed, idx, record order, thresholds);
// re-running the partition reproduces the identical tally.
func classifyPartition[T any](
	idx int,
	in stream.Stream[T],
	thresholds []SetThreshold,
	seed int64,
) stream.Stream[Tallies] {
	return stream.FromCollector(in, func(ctx context.Context, src stream.Stream[T]) ([]Tallies, error) {
		keys := randkey.New(seed, idx)
		tallies := make(Tallies, len(thresholds))
		for _, st := range thresholds {
			tallies[st.Name] = Tally{}
		}

		err := src.Consume(ctx, func(T) {
			key := keys.Next()
			for _, st := range thresholds {
				if key < st.Low {
					continue
				}
				if key < st.Accept {
					t := tallies[st.Name]
					t.Accepted++
					tallies[st.Name] = t
				} else if key < st.WaitlistCutoff {
					t := tallies[st.Name]
					t.Waitlisted = append(t.Waitlisted, key)
					tallies[st.Name] = t
				}
			}
		})
		if err != nil {
			return nil, err
		}
		return []Tallies{tallies}, nil
	})
}

// labelPartition is the second pass over one partition: it reseeds the key
// sequence exactly as classifyPartition did, regenerates the same per-record
// keys, and emits (set, record) for each record whose key falls in a set's
// final interval. Sets are checked in the fixed threshold order and a record
// is emitted for at most one set.
func labelPartition[T any](
	idx int,
	in stream.Stream[T],
	finals []SetFinalThreshold,
	seed int64,
) stream.Stream[Labeled[T]] {
	var keys *randkey.Sequence
	return stream.MapWhileFiltering(in, func(record T) *Labeled[T] {
		key := keys.Next()
		for _, ft := range finals {
			if key < ft.Low {
				continue
			}
			if key < ft.High {
				return &Labeled[T]{Set: ft.Name, Record: record}
			}
		}
		return nil
	}).WithAdditionalLifecycle(stream.NewLifecycle(func(_ context.Context) error {
		// Reseed on every materialization so the key sequence matches pass 1
		keys = randkey.New(seed, idx)
		return nil
	}, nil))
}
