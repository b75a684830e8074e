package sampling

import (
	"math"

	"github.com/pkg/errors"
)

// Threshold is a working pass-1 interval for one set within the [0, 1) key
// space: keys in [Low, Accept) are accepted outright, keys in
// [Accept, WaitlistCutoff) are waitlisted for the second-pass correction, and
// everything else is not in the set.
type Threshold struct {
	Low            float64
	Accept         float64
	WaitlistCutoff float64
}

func newThreshold(low, accept, waitlistCutoff float64) (Threshold, error) {
	if low < 0 || low > accept || accept > waitlistCutoff {
		return Threshold{}, errors.Errorf(
			"invalid threshold: low=%v accept=%v waitlistCutoff=%v", low, accept, waitlistCutoff)
	}
	return Threshold{Low: low, Accept: accept, WaitlistCutoff: waitlistCutoff}, nil
}

// SetThreshold pairs a set name with its working threshold. The slice order
// is the interval allocation order and is fixed for both passes.
type SetThreshold struct {
	Name string
	Threshold
}

// chernoffBounds computes the single-pass acceptance and waitlist cutoffs for
// one set, per Meng's scalable SRS bounds
// (http://www.jmlr.org/proceedings/papers/v28/meng13a.pdf): with probability
// >= 1-delta the number of keys below qLow is at most the target size, and
// the number below qHigh is at least the target size, so the waitlist band
// [qLow, qHigh) is long enough to correct to the exact size.
func chernoffBounds(ratio float64, population int64, delta float64) (qLow, qHigh float64) {
	n := float64(population)
	gamma1 := -math.Log(delta) / n
	gamma2 := -(2.0 * math.Log(delta)) / (3.0 * n)

	qLow = math.Max(0, ratio+gamma2-math.Sqrt(gamma2*gamma2+3.0*gamma2*ratio))
	qHigh = math.Min(1, ratio+gamma1+math.Sqrt(gamma1*gamma1+2.0*gamma1*ratio))
	return qLow, qHigh
}

// InitialThresholds allocates each set a disjoint sub-interval of the unit
// key space: set i occupies [offset, offset+qLow) as its accept zone and
// [offset, offset+qHigh) overall, where offset is the sum of the preceding
// sets' qHigh values. Disjointness guarantees no record can be claimed by two
// sets. Intervals are clamped to 1.0; a set whose offset already reaches the
// end of the key space fails with ErrCapacityExceeded.
func InitialThresholds(sets []TargetSet, population int64, delta float64) ([]SetThreshold, error) {
	offset := 0.0
	thresholds := make([]SetThreshold, 0, len(sets))

	for _, set := range sets {
		if offset >= 1.0 {
			return nil, errors.Wrapf(ErrCapacityExceeded,
				"no key space left for set %q (offset %v)", set.Name, offset)
		}
		qLow, qHigh := chernoffBounds(float64(set.Size)/float64(population), population, delta)
		t, err := newThreshold(
			offset,
			math.Min(offset+qLow, 1.0),
			math.Min(offset+qHigh, 1.0),
		)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, SetThreshold{Name: set.Name, Threshold: t})
		offset += qHigh
	}
	return thresholds, nil
}

// FinalThreshold is the exact accept interval [Low, High) for one set after
// the second-pass correction.
type FinalThreshold struct {
	Low  float64
	High float64
}

// SetFinalThreshold pairs a set name with its final threshold; slice order
// matches the initial threshold order.
type SetFinalThreshold struct {
	Name string
	FinalThreshold
}
