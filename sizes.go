package sampling

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// SetSpec names a target set and its requested size. A size in (0, 1) is a
// sampling ratio of the population; a size >= 1 is an absolute record count.
// Set order is significant: it determines how key-space intervals are
// allocated, and must be the same on every run for reproducible output.
type SetSpec struct {
	Name string
	Size float64
}

// SetSpecsFromMap converts a name->size map into specs ordered by name, so
// that callers configuring sets via maps still get deterministic interval
// allocation.
func SetSpecsFromMap(sizes map[string]float64) []SetSpec {
	names := lo.Keys(sizes)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) SetSpec {
		return SetSpec{Name: name, Size: sizes[name]}
	})
}

// TargetSet is a normalized target set: an absolute integer record count
// against a known population.
type TargetSet struct {
	Name string
	Size int64
}

// NormalizeSetSizes converts requested sizes into absolute integer counts
// against the given population. Ratios are rounded to the nearest count.
// If the requested sizes sum to more than the population, the sizes are
// scaled down proportionally when reproportion is set, and rejected with
// ErrInvalidConfiguration otherwise.
func NormalizeSetSizes(sets []SetSpec, population int64, reproportion bool) ([]TargetSet, error) {
	if population <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "population must be positive, got %d", population)
	}
	if len(sets) == 0 {
		return nil, errors.Wrap(ErrInvalidConfiguration, "no target sets requested")
	}
	if dup := lo.FindDuplicatesBy(sets, func(s SetSpec) string { return s.Name }); len(dup) > 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "duplicate set name %q", dup[0].Name)
	}

	n := float64(population)
	absolute := lo.Map(sets, func(s SetSpec, _ int) float64 {
		if s.Size < 1.0 {
			return math.Round(s.Size * n)
		}
		return math.Trunc(s.Size)
	})
	for i, size := range absolute {
		if size <= 0 {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "set %q has non-positive size", sets[i].Name)
		}
	}

	total := lo.Sum(absolute)
	if total > n {
		if !reproportion {
			return nil, errors.Wrapf(ErrInvalidConfiguration,
				"requested %.0f records out of a population of %d", total, population)
		}
		// Scale preserving relative proportions; truncation keeps the sum
		// under the population.
		for i := range absolute {
			absolute[i] = math.Trunc(absolute[i] * n / total)
		}
	}

	normalized := make([]TargetSet, len(sets))
	for i, s := range sets {
		normalized[i] = TargetSet{Name: s.Name, Size: int64(absolute[i])}
	}
	return normalized, nil
}
