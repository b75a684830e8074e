package textfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	sampling "github.com/Yelp/yelp-sampling"
)

func writeRecordFiles(t *testing.T, dir string, perFile, files int) []string {
	t.Helper()
	var paths []string
	n := 0
	for f := 0; f < files; f++ {
		lines := make([]string, perFile)
		for i := range lines {
			lines[i] = fmt.Sprintf("record-%06d", n)
			n++
		}
		paths = append(paths, writeLines(t, dir, fmt.Sprintf("part-%02d.txt", f), lines))
	}
	return paths
}

func readSetFile(t *testing.T, outDir, set string) []string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(outDir, set+".txt"))
	require.NoError(t, err)
	text := strings.TrimSuffix(string(raw), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestSplit_ExactSizesAndDisjoint(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	inputs := writeRecordFiles(t, inDir, 250, 4) // 1000 records over 4 partitions

	report, err := Split(context.Background(), SplitConfig{
		Inputs:    inputs,
		OutputDir: outDir,
		Sets: []sampling.SetSpec{
			{Name: "train", Size: 0.6},
			{Name: "test", Size: 0.2},
		},
		Seed:  42,
		Cache: true,
	}, nil)
	require.NoError(t, err)
	require.Empty(t, report.Advisories)
	require.EqualValues(t, 1000, report.Population)

	train := readSetFile(t, outDir, "train")
	test := readSetFile(t, outDir, "test")
	require.Len(t, train, 600)
	require.Len(t, test, 200)

	inTrain := make(map[string]bool, len(train))
	for _, r := range train {
		inTrain[r] = true
	}
	for _, r := range test {
		require.False(t, inTrain[r], "record %s in both sets", r)
	}
}

func TestSplit_Reproducible(t *testing.T) {
	inDir := t.TempDir()
	inputs := writeRecordFiles(t, inDir, 200, 3)

	run := func() ([]string, []string) {
		outDir := t.TempDir()
		_, err := Split(context.Background(), SplitConfig{
			Inputs:    inputs,
			OutputDir: outDir,
			Sets:      []sampling.SetSpec{{Name: "a", Size: 50}, {Name: "b", Size: 25}},
			Seed:      1234,
		}, nil)
		require.NoError(t, err)
		return readSetFile(t, outDir, "a"), readSetFile(t, outDir, "b")
	}

	a1, b1 := run()
	a2, b2 := run()
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.Len(t, a1, 50)
	require.Len(t, b1, 25)
}

func TestSplit_NoInputs(t *testing.T) {
	_, err := Split(context.Background(), SplitConfig{
		OutputDir: t.TempDir(),
		Sets:      []sampling.SetSpec{{Name: "a", Size: 1}},
	}, nil)
	require.Error(t, err)
}

func TestSplit_OversubscribedSurfacesError(t *testing.T) {
	inDir := t.TempDir()
	inputs := writeRecordFiles(t, inDir, 100, 1)

	_, err := Split(context.Background(), SplitConfig{
		Inputs:    inputs,
		OutputDir: t.TempDir(),
		Sets:      []sampling.SetSpec{{Name: "a", Size: 80}, {Name: "b", Size: 40}},
		Seed:      42,
	}, nil)
	require.ErrorIs(t, err, sampling.ErrInvalidConfiguration)
}
