package dataset

import (
	"github.com/Yelp/yelp-sampling/stream"
)

// FromSlices builds an in-memory dataset with one partition per slice.
func FromSlices[T any](partitions ...[]T) Dataset[T] {
	return &sliceDataset[T]{partitions: partitions}
}

// FromSlice builds an in-memory dataset by splitting records into
// numPartitions contiguous chunks. If numPartitions exceeds the number of
// records, the trailing partitions are empty.
func FromSlice[T any](records []T, numPartitions int) Dataset[T] {
	if numPartitions < 1 {
		numPartitions = 1
	}
	partitions := make([][]T, numPartitions)
	chunk := len(records) / numPartitions
	rem := len(records) % numPartitions
	pos := 0
	for i := range partitions {
		size := chunk
		if i < rem {
			size++
		}
		partitions[i] = records[pos : pos+size]
		pos += size
	}
	return &sliceDataset[T]{partitions: partitions}
}

type sliceDataset[T any] struct {
	partitions [][]T
}

func (d *sliceDataset[T]) NumPartitions() int {
	return len(d.partitions)
}

func (d *sliceDataset[T]) Partition(idx int) stream.Stream[T] {
	return stream.Just(d.partitions[idx]...)
}
