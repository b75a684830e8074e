// Package textfile adapts newline-delimited record files to the dataset
// abstraction: each input file is one partition. It also provides the
// file-to-file split driver built on the sampling package.
package textfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/Yelp/yelp-sampling/dataset"
	"github.com/Yelp/yelp-sampling/stream"
)

type Option func(*Dataset)

// WithCache keeps each partition's lines in memory after the first read, so
// the two sampling passes read every file only once. Without it, each pass
// re-reads the files from disk.
func WithCache() Option {
	return func(d *Dataset) {
		d.cache = true
	}
}

// Dataset exposes a set of newline-delimited files as a partitioned dataset,
// one file per partition. Records are the file lines, in file order, so a
// partition always yields the same records in the same order — the property
// the two-pass sampler depends on.
type Dataset struct {
	paths []string
	cache bool

	mu    sync.Mutex
	lines [][]string
}

var _ dataset.Dataset[string] = (*Dataset)(nil)

// NewDataset builds a dataset over the given files, one partition per file.
// Partition order follows the argument order.
func NewDataset(paths []string, opts ...Option) *Dataset {
	d := &Dataset{
		paths: paths,
		lines: make([][]string, len(paths)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dataset) NumPartitions() int {
	return len(d.paths)
}

func (d *Dataset) Partition(idx int) stream.Stream[string] {
	if d.cache {
		return stream.NewStream[string](&cachedPartition{d: d, idx: idx})
	}
	return stream.NewStream[string](&linePartition{path: d.paths[idx]})
}

// load reads and memoizes the lines of one partition.
func (d *Dataset) load(idx int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lines[idx] != nil {
		return d.lines[idx], nil
	}
	lines, err := readLines(d.paths[idx])
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []string{}
	}
	d.lines[idx] = lines
	return lines, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn(fmt.Sprintf("error closing input file %s: %v", path, err))
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

const maxLineSize = 16 * 1024 * 1024

// cachedPartition serves a partition from the dataset's in-memory cache,
// loading it on first open.
type cachedPartition struct {
	d         *Dataset
	idx       int
	remaining []string
}

func (p *cachedPartition) Open(_ context.Context) error {
	lines, err := p.d.load(p.idx)
	if err != nil {
		return err
	}
	p.remaining = lines
	return nil
}

func (p *cachedPartition) Close() {
	p.remaining = nil
}

func (p *cachedPartition) Emit(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if len(p.remaining) == 0 {
		return "", io.EOF
	}
	line := p.remaining[0]
	p.remaining = p.remaining[1:]
	return line, nil
}

// linePartition streams a partition's lines straight from disk.
type linePartition struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
}

func (p *linePartition) Open(_ context.Context) error {
	file, err := os.Open(p.path)
	if err != nil {
		return err
	}
	p.file = file
	p.scanner = bufio.NewScanner(file)
	p.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return nil
}

func (p *linePartition) Close() {
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			slog.Warn(fmt.Sprintf("error closing input file %s: %v", p.path, err))
		}
		p.file = nil
		p.scanner = nil
	}
}

func (p *linePartition) Emit(ctx context.Context) (string, error) {
	if p.scanner == nil {
		// Emit called before Open or after Close
		return "", os.ErrClosed
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		if p.scanner.Scan() {
			return p.scanner.Text(), nil
		}
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
}
