package stream

import (
	"context"
	"io"

	"github.com/Yelp/yelp-sampling/internal/util"
)

// FromCollector creates a stream from a collector function over a source stream,
// resulting in delayed materialization: the source is only consumed when the
// returned stream is opened.
func FromCollector[S any, T any](
	src Stream[S],
	collector func(ctx context.Context, src Stream[S]) ([]T, error),
) Stream[T] {
	return NewStream[T](
		&collectedStream[S, T]{src: src, collector: collector},
	)
}

type collectedStream[S any, T any] struct {
	src       Stream[S]
	collector func(ctx context.Context, src Stream[S]) ([]T, error)
	collected *[]T
}

func (m *collectedStream[S, T]) Open(ctx context.Context) error {
	collected, err := m.collector(ctx, m.src)
	if err != nil {
		return err
	}
	m.collected = &collected
	return nil
}

func (m *collectedStream[S, T]) Close() {
	m.collected = nil
}

func (m *collectedStream[S, T]) Emit(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}
	if len(*m.collected) == 0 {
		return util.DefaultValue[T](), io.EOF
	}
	v := (*m.collected)[0]
	*m.collected = (*m.collected)[1:]
	return v, nil
}
