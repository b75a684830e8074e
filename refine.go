package sampling

import (
	"fmt"

	"github.com/Yelp/yelp-sampling/internal/selection"
)

// AdvisoryKind classifies a non-fatal condition detected while refining
// thresholds. Advisories are reported, never raised as errors: the pipeline
// proceeds and produces the closest achievable result.
type AdvisoryKind string

const (
	// AdvisoryWaitlistShort means the waitlist did not hold enough keys to
	// correct the set up to its exact target size; the set is under-filled.
	// The bounds make this statistically rare (probability < delta), but it
	// must be surfaced rather than silently ignored.
	AdvisoryWaitlistShort AdvisoryKind = "waitlist_short"

	// AdvisoryOverSatisfied means the accept zone alone already exceeded the
	// target size; the entire waitlist is discarded and the set keeps the
	// surplus.
	AdvisoryOverSatisfied AdvisoryKind = "over_satisfied"
)

// Advisory reports a non-fatal sampling condition for one set.
type Advisory struct {
	Set      string
	Kind     AdvisoryKind
	Target   int64
	Achieved int64
}

func (a Advisory) String() string {
	return fmt.Sprintf("set %q: %s (target %d, achieved %d)", a.Set, a.Kind, a.Target, a.Achieved)
}

// RefineThresholds computes the final exact accept interval for each set from
// the globally merged tally.
//
// Per set, with required = target - accepted:
//   - required <= 0: the accept zone alone meets (or exceeds) the target; the
//     whole waitlist is discarded and the final interval is [low, accept).
//   - required >= len(waitlist): every waitlisted key is needed; the final
//     interval is [low, waitlistCutoff). If the waitlist is strictly too
//     short the set stays under-filled and an advisory is reported.
//   - otherwise: the (required+1)-th smallest waitlisted key becomes the
//     exclusive upper bound, so exactly required waitlisted keys fall below
//     it. This assumes no duplicate keys; for continuous uniform variates the
//     collision probability is negligible, though not provably zero.
//
// The returned slice preserves the threshold order, which the second pass
// relies on.
func RefineThresholds(global Tallies, sets []TargetSet, thresholds []SetThreshold) ([]SetFinalThreshold, []Advisory) {
	finals := make([]SetFinalThreshold, 0, len(thresholds))
	var advisories []Advisory

	sizeByName := make(map[string]int64, len(sets))
	for _, s := range sets {
		sizeByName[s.Name] = s.Size
	}

	for _, st := range thresholds {
		size := sizeByName[st.Name]
		tally := global[st.Name]
		required := size - tally.Accepted
		waitlisted := int64(len(tally.Waitlisted))

		var high float64
		switch {
		case required <= 0:
			// Already have enough samples; discard the waitlist
			high = st.Accept
			if required < 0 {
				advisories = append(advisories, Advisory{
					Set:      st.Name,
					Kind:     AdvisoryOverSatisfied,
					Target:   size,
					Achieved: tally.Accepted,
				})
			}
		case required >= waitlisted:
			// Too few samples; accept the entire waitlist
			high = st.WaitlistCutoff
			if required > waitlisted {
				advisories = append(advisories, Advisory{
					Set:      st.Name,
					Kind:     AdvisoryWaitlistShort,
					Target:   size,
					Achieved: tally.Accepted + waitlisted,
				})
			}
		default:
			// The +1 is because the selected key is an exclusive upper bound
			smallest := selection.NSmallest(int(required)+1, tally.Waitlisted)
			high = smallest[len(smallest)-1]
		}

		finals = append(finals, SetFinalThreshold{
			Name:           st.Name,
			FinalThreshold: FinalThreshold{Low: st.Low, High: high},
		})
	}
	return finals, advisories
}
