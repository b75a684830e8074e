package sampling

import "slices"

// Tally is one set's pass-1 bookkeeping: how many records fell in the accept
// zone, and the keys of the records that fell in the waitlist band.
type Tally struct {
	Accepted   int64
	Waitlisted []float64
}

// Tallies maps set name to tally. One Tallies value is produced per
// partition, and the per-partition values are merged into a single global
// tally at the reduce barrier between the two passes.
type Tallies map[string]Tally

// MergeTallies merges two tallies into a fresh one, summing accepted counts
// and concatenating waitlists per set. It is associative and commutative up
// to waitlist ordering (which the refiner does not depend on), and never
// mutates its inputs, so it is safe to use as a pure reduction. Shared
// mutable counters are deliberately avoided here: under at-least-once
// re-execution they double-count, while a pure reduce over deterministic
// partition tallies stays exact as long as the underlying reduce contributes
// each partition exactly once.
func MergeTallies(a, b Tallies) Tallies {
	merged := make(Tallies, len(a))
	for name, t := range a {
		merged[name] = Tally{
			Accepted:   t.Accepted,
			Waitlisted: slices.Clone(t.Waitlisted),
		}
	}
	for name, t := range b {
		prev := merged[name]
		merged[name] = Tally{
			Accepted:   prev.Accepted + t.Accepted,
			Waitlisted: append(prev.Waitlisted, t.Waitlisted...),
		}
	}
	return merged
}
