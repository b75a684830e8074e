package sampling

// Report captures the intermediate state of one sampling run: the inputs
// after normalization, the thresholds of both passes, and any advisories
// raised at the refinement barrier. It is informational; callers typically
// log it.
type Report struct {
	Seed       int64
	Population int64
	Sets       []TargetSet
	Initial    []SetThreshold
	Final      []SetFinalThreshold

	// WaitlistLengths records how many keys each set waitlisted in pass 1.
	WaitlistLengths map[string]int64

	Advisories []Advisory
}
