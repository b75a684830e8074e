// Package selection implements bounded partial order-statistic selection:
// finding the n smallest values of a large slice without fully sorting it.
package selection

import (
	"container/heap"
	"slices"
)

// maxHeap is a max-heap of float64 values, so the root is always the largest
// of the n smallest seen so far.
type maxHeap []float64

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// NSmallest returns the n smallest values of the given slice in ascending
// order, without mutating the input. It runs in O(len(values) * log(n)).
// If n >= len(values) the whole slice is returned sorted; if n <= 0 the
// result is nil.
func NSmallest(n int, values []float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n >= len(values) {
		out := slices.Clone(values)
		slices.Sort(out)
		return out
	}

	h := make(maxHeap, n)
	copy(h, values[:n])
	heap.Init(&h)
	for _, v := range values[n:] {
		if v < h[0] {
			h[0] = v
			heap.Fix(&h, 0)
		}
	}

	out := []float64(h)
	slices.Sort(out)
	return out
}
