package textfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yelp/yelp-sampling/dataset"
)

func writeLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataset_OneFilePerPartition(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, dir, "a.txt", []string{"a1", "a2"})
	b := writeLines(t, dir, "b.txt", []string{"b1"})

	ds := NewDataset([]string{a, b})
	require.Equal(t, 2, ds.NumPartitions())
	require.Equal(t, []string{"a1", "a2"}, ds.Partition(0).MustCollect())
	require.Equal(t, []string{"b1"}, ds.Partition(1).MustCollect())

	count, err := dataset.Count(context.Background(), ds)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestDataset_MissingFileFails(t *testing.T) {
	ds := NewDataset([]string{filepath.Join(t.TempDir(), "nope.txt")})
	_, err := ds.Partition(0).Collect(context.Background())
	require.Error(t, err)
}

func TestDataset_CacheServesSecondPassFromMemory(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "in.txt", []string{"one", "two", "three"})

	ds := NewDataset([]string{path}, WithCache())
	require.Equal(t, []string{"one", "two", "three"}, ds.Partition(0).MustCollect())

	// Rewriting the file must not change what the dataset yields: the first
	// pass populated the cache and the second pass reads from it
	writeLines(t, dir, "in.txt", []string{"changed"})
	require.Equal(t, []string{"one", "two", "three"}, ds.Partition(0).MustCollect())
}

func TestDataset_WithoutCacheRereadsDisk(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "in.txt", []string{"one"})

	ds := NewDataset([]string{path})
	require.Equal(t, []string{"one"}, ds.Partition(0).MustCollect())

	writeLines(t, dir, "in.txt", []string{"changed"})
	require.Equal(t, []string{"changed"}, ds.Partition(0).MustCollect())
}

func TestDataset_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "empty.txt", nil)

	for _, opts := range [][]Option{nil, {WithCache()}} {
		ds := NewDataset([]string{path}, opts...)
		require.Empty(t, ds.Partition(0).MustCollect())
	}
}

func TestDataset_ManyLines(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 5000)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%d", i)
	}
	path := writeLines(t, dir, "big.txt", lines)

	ds := NewDataset([]string{path}, WithCache())
	out, err := dataset.Collect(context.Background(), dataset.Dataset[string](ds))
	require.NoError(t, err)
	require.Equal(t, lines, out)
}
