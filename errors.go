package sampling

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration indicates that the sum of the requested
	// absolute set sizes exceeds the population and reproportioning is
	// disabled.
	ErrInvalidConfiguration = errors.New("sampling: sum of sampled sets larger than source set")

	// ErrCapacityExceeded indicates that the cumulative key-space offsets of
	// the requested sets exceed the unit interval: the sets are too large or
	// too numerous to be allocated disjoint intervals of [0, 1).
	ErrCapacityExceeded = errors.New("sampling: cumulative set intervals exceed the unit key space")
)
