// Package randkey generates the deterministic per-record uniform keys that
// both sampling passes rely on. A Sequence seeded with the same
// (seed, partition) pair always yields the same sequence of keys, so
// re-running a partition after a failure reproduces the exact classification
// of the first run.
package randkey

import "math/rand"

// Sequence is a deterministic source of uniform variates in [0, 1) for a
// single partition. It is stateful and strictly order-dependent: the i-th
// call to Next returns the key of the i-th record of the partition.
type Sequence struct {
	rng *rand.Rand
}

// New seeds a fresh sequence for the given partition. The generator must be
// reseeded identically in both passes; no ambient randomness is ever mixed in.
func New(seed int64, partition int) *Sequence {
	return &Sequence{rng: rand.New(rand.NewSource(seed + int64(partition)))}
}

// Next returns the next uniform key in [0, 1).
func (s *Sequence) Next() float64 {
	return s.rng.Float64()
}
