package dataset

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/Yelp/yelp-sampling/stream"
)

// ErrEmptyDataset is returned by Reduce when no partition yields any element.
var ErrEmptyDataset = errors.New("dataset: reduce of empty dataset")

type partial[T any] struct {
	value    T
	nonEmpty bool
}

// Reduce merges all elements of the dataset with the given function, which
// must be associative and commutative. Partitions are evaluated independently
// (in parallel, bounded by WithConcurrency) and folded locally; the partial
// results are then merged in partition order, so the result is deterministic
// for deterministic partitions. This is a pure reduction: no shared mutable
// accumulators are involved, so re-evaluating a partition cannot double-count.
func Reduce[T any](ctx context.Context, ds Dataset[T], merge func(T, T) T, opts ...Option) (T, error) {
	o := buildOptions(opts)

	n := ds.NumPartitions()
	partials := make([]partial[T], n)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Capture only the first error and stop the remaining workers
	var firstErr error
	var errOnce sync.Once
	setErr := func(e error) {
		errOnce.Do(func() {
			firstErr = e
			cancel()
		})
	}

	indexChan := make(chan int)
	go func() {
		defer close(indexChan)
		for i := 0; i < n; i++ {
			select {
			case indexChan <- i:
			case <-workerCtx.Done():
				return
			}
		}
	}()

	workers := o.concurrency
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				p, err := reducePartition(workerCtx, ds.Partition(idx), merge)
				if err != nil {
					setErr(errors.Wrapf(err, "failed to reduce partition %d", idx))
					return
				}
				partials[idx] = p
			}
		}()
	}
	wg.Wait()

	var zero T
	if firstErr != nil {
		return zero, firstErr
	}

	// Merge partials in partition order
	acc := partial[T]{}
	for _, p := range partials {
		if !p.nonEmpty {
			continue
		}
		if !acc.nonEmpty {
			acc = p
		} else {
			acc.value = merge(acc.value, p.value)
		}
	}
	if !acc.nonEmpty {
		return zero, ErrEmptyDataset
	}
	return acc.value, nil
}

func reducePartition[T any](ctx context.Context, s stream.Stream[T], merge func(T, T) T) (partial[T], error) {
	acc := partial[T]{}
	err := s.Consume(ctx, func(v T) {
		if !acc.nonEmpty {
			acc = partial[T]{value: v, nonEmpty: true}
		} else {
			acc.value = merge(acc.value, v)
		}
	})
	if err != nil {
		return partial[T]{}, err
	}
	return acc, nil
}

// Count counts the records of the dataset with one pass, evaluating
// partitions in parallel.
func Count[T any](ctx context.Context, ds Dataset[T], opts ...Option) (int64, error) {
	counts := MapPartitionsWithIndex(ds, func(_ int, in stream.Stream[T]) stream.Stream[int64] {
		return stream.FromCollector(in, func(ctx context.Context, src stream.Stream[T]) ([]int64, error) {
			c, err := src.Count(ctx)
			if err != nil {
				return nil, err
			}
			return []int64{c}, nil
		})
	})
	total, err := Reduce(ctx, counts, func(a, b int64) int64 { return a + b }, opts...)
	if err != nil {
		if errors.Is(err, ErrEmptyDataset) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// Collect materializes the dataset into a slice, partition by partition, in
// partition order.
func Collect[T any](ctx context.Context, ds Dataset[T]) ([]T, error) {
	var result []T
	err := Consume(ctx, ds, func(v T) error {
		result = append(result, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Consume applies f to every record of the dataset sequentially, in partition
// order.
func Consume[T any](ctx context.Context, ds Dataset[T], f func(T) error) error {
	for idx := 0; idx < ds.NumPartitions(); idx++ {
		if err := ds.Partition(idx).ConsumeWithErr(ctx, f); err != nil {
			return errors.Wrapf(err, "failed to consume partition %d", idx)
		}
	}
	return nil
}
