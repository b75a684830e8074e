package sampling

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yelp/yelp-sampling/dataset"
)

func records(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("record-%06d", i)
	}
	return out
}

func collectBySets(t *testing.T, ctx context.Context, ds dataset.Dataset[Labeled[string]]) map[string][]string {
	t.Helper()
	labeled, err := dataset.Collect(ctx, ds)
	require.NoError(t, err)
	bySet := make(map[string][]string)
	for _, l := range labeled {
		bySet[l.Set] = append(bySet[l.Set], l.Record)
	}
	return bySet
}

func TestSample_ExactSize(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(1000), 8)

	labeled, report, err := Sample(ctx, ds, []SetSpec{{Name: "A", Size: 100}}, Options{
		Seed: 42,
	})
	require.NoError(t, err)
	require.Empty(t, report.Advisories)
	require.EqualValues(t, 1000, report.Population)
	require.EqualValues(t, 42, report.Seed)

	bySet := collectBySets(t, ctx, labeled)
	require.Len(t, bySet["A"], 100)
}

func TestSample_RatioSize(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(2000), 5)

	labeled, report, err := Sample(ctx, ds, []SetSpec{{Name: "train", Size: 0.1}}, Options{
		Seed: 7,
	})
	require.NoError(t, err)
	require.Equal(t, []TargetSet{{Name: "train", Size: 200}}, report.Sets)

	bySet := collectBySets(t, ctx, labeled)
	require.Len(t, bySet["train"], 200)
}

func TestSample_MultiSetDisjointExactSizes(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(10000), 16)

	labeled, report, err := Sample(ctx, ds, []SetSpec{
		{Name: "train", Size: 600},
		{Name: "test", Size: 200},
	}, Options{Seed: 7})
	require.NoError(t, err)
	require.Empty(t, report.Advisories)

	bySet := collectBySets(t, ctx, labeled)
	require.Len(t, bySet["train"], 600)
	require.Len(t, bySet["test"], 200)

	// Disjointness: no record is claimed by both sets
	seen := make(map[string]bool)
	for _, set := range []string{"train", "test"} {
		for _, record := range bySet[set] {
			require.False(t, seen[record], "record %s in more than one set", record)
			seen[record] = true
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(5000), 11)
	sets := []SetSpec{{Name: "train", Size: 400}, {Name: "test", Size: 100}}

	run := func() []Labeled[string] {
		labeled, _, err := Sample(ctx, ds, sets, Options{Seed: 1234})
		require.NoError(t, err)
		out, err := dataset.Collect(ctx, labeled)
		require.NoError(t, err)
		return out
	}

	first := run()
	second := run()
	require.Equal(t, first, second)
}

func TestSample_OutputReusable(t *testing.T) {
	// The labeled dataset reseeds its key sequences on every
	// materialization, so consuming it twice yields identical output
	ctx := context.Background()
	ds := dataset.FromSlice(records(1000), 4)

	labeled, _, err := Sample(ctx, ds, []SetSpec{{Name: "A", Size: 50}}, Options{Seed: 99})
	require.NoError(t, err)

	first, err := dataset.Collect(ctx, labeled)
	require.NoError(t, err)
	second, err := dataset.Collect(ctx, labeled)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 50)
}

func TestSample_ExplicitCountSkipsCountingPass(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(1000), 4)

	labeled, report, err := Sample(ctx, ds, []SetSpec{{Name: "A", Size: 100}}, Options{
		Seed:  42,
		Count: 1000,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1000, report.Population)

	bySet := collectBySets(t, ctx, labeled)
	require.Len(t, bySet["A"], 100)
}

func TestSample_OversubscribedFails(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(1000), 4)

	_, _, err := Sample(ctx, ds, []SetSpec{
		{Name: "train", Size: 600},
		{Name: "test", Size: 500},
	}, Options{Seed: 42})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSample_OversubscribedReproportions(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(1000), 4)

	labeled, report, err := Sample(ctx, ds, []SetSpec{
		{Name: "train", Size: 600},
		{Name: "test", Size: 500},
	}, Options{Seed: 42, Reproportion: true})
	require.NoError(t, err)

	// Sizes rescaled preserving the 6:5 ratio
	require.Equal(t, []TargetSet{
		{Name: "train", Size: 545},
		{Name: "test", Size: 454},
	}, report.Sets)

	bySet := collectBySets(t, ctx, labeled)

	// The first set's interval fits in the key space and is corrected
	// exactly. The second set saturates the end of the unit interval: its
	// waitlist band is truncated, so it comes up short and the shortfall is
	// surfaced as an advisory rather than silently ignored.
	require.Len(t, bySet["train"], 545)
	require.NotEmpty(t, bySet["test"])
	require.Less(t, len(bySet["test"]), 454)

	require.NotEmpty(t, report.Advisories)
	require.Equal(t, "test", report.Advisories[0].Set)
	require.Equal(t, AdvisoryWaitlistShort, report.Advisories[0].Kind)

	// Even truncated, the two sets stay disjoint
	train := make(map[string]bool, len(bySet["train"]))
	for _, r := range bySet["train"] {
		train[r] = true
	}
	for _, r := range bySet["test"] {
		require.False(t, train[r])
	}
}

func TestSample_SeedDefaultsToWallClock(t *testing.T) {
	ctx := context.Background()
	ds := dataset.FromSlice(records(100), 2)

	_, report, err := Sample(ctx, ds, []SetSpec{{Name: "A", Size: 10}}, Options{})
	require.NoError(t, err)
	require.NotZero(t, report.Seed)
}
