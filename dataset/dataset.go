// Package dataset provides a minimal partitioned-collection abstraction:
// a dataset is a fixed number of partitions, each exposing its records as a
// lazy stream. Partition evaluation is independent and side-effect free, so
// any partition may be re-evaluated (e.g. after a failure) and will produce
// the same records.
package dataset

import (
	"runtime"

	"github.com/Yelp/yelp-sampling/stream"
)

// Dataset is a partitioned collection of records.
//
// Partition returns a lazy stream over the records of one partition.
// Implementations must return streams that can be materialized more than once
// and always yield the same records in the same order for a given index; the
// two-pass sampling pipeline depends on that.
type Dataset[T any] interface {
	NumPartitions() int
	Partition(idx int) stream.Stream[T]
}

// PartitionFunc derives an output partition stream from an input partition
// stream and its index. The returned stream must be a pure function of the
// inputs: no shared state across partitions, no ambient randomness.
type PartitionFunc[T any, O any] func(idx int, in stream.Stream[T]) stream.Stream[O]

// MapPartitionsWithIndex lazily derives a new dataset by applying fn to each
// partition. The output preserves the input partitioning.
func MapPartitionsWithIndex[T any, O any](src Dataset[T], fn PartitionFunc[T, O]) Dataset[O] {
	return &mappedDataset[T, O]{src: src, fn: fn}
}

type mappedDataset[T any, O any] struct {
	src Dataset[T]
	fn  PartitionFunc[T, O]
}

func (m *mappedDataset[T, O]) NumPartitions() int {
	return m.src.NumPartitions()
}

func (m *mappedDataset[T, O]) Partition(idx int) stream.Stream[O] {
	return m.fn(idx, m.src.Partition(idx))
}

type options struct {
	concurrency int
}

type Option func(*options)

// WithConcurrency bounds how many partitions are evaluated in parallel by
// Count and Reduce. The default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{concurrency: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
