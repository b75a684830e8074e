package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/Yelp/yelp-sampling/internal/util"
)

// Stream is a lazy, single-use sequence of items. Nothing is read from the
// underlying provider until the stream is materialized by one of the
// consuming methods (Consume, Collect, Count, ...).
type Stream[T any] struct {
	provider            ProviderFunc[T]
	allLifecycleElement []Lifecycle
}

type ProviderFunc[T any] func(ctx context.Context) (T, error)

func NewStream[T any](provider Provider[T]) Stream[T] {
	return newStream(provider.Emit, []Lifecycle{provider})
}

func newStream[T any](providerFunc ProviderFunc[T], allLifecycleElement []Lifecycle) Stream[T] {
	return Stream[T]{provider: providerFunc, allLifecycleElement: allLifecycleElement}
}

type CreateStreamOption struct {
	openFunc  func(ctx context.Context) error
	closeFunc func()
}

func WithOpenFuncOption(openFunc func(ctx context.Context) error) CreateStreamOption {
	return CreateStreamOption{openFunc: openFunc}
}

func WithCloseFuncOption(closeFunc func()) CreateStreamOption {
	return CreateStreamOption{closeFunc: closeFunc}
}

func NewSimpleStream[T any](providerFunc ProviderFunc[T], options ...CreateStreamOption) Stream[T] {
	var openFunc func(ctx context.Context) error
	var closeFunc func()

	for _, option := range options {
		if option.openFunc != nil {
			openFunc = option.openFunc
		}
		if option.closeFunc != nil {
			closeFunc = option.closeFunc
		}
	}

	var lifecycleElements []Lifecycle
	if openFunc != nil || closeFunc != nil {
		lifecycleElements = []Lifecycle{
			NewLifecycle(openFunc, closeFunc),
		}
	}
	return Stream[T]{provider: providerFunc, allLifecycleElement: lifecycleElements}
}

// Consume consumes the entire stream and applies the provided function to each element.
// It returns an error if the stream materialization fails in any stage of the pipeline.
// For empty streams, it returns immediately with no error.
func (s Stream[T]) Consume(ctx context.Context, f func(T)) error {
	return s.ConsumeWithErr(ctx, func(v T) error {
		f(v)
		return nil
	})
}

// ConsumeWithErr consumes the entire stream and applies the provided function to each element.
// Allows returning an error from the function to stop the pipeline.
func (s Stream[T]) ConsumeWithErr(ctx context.Context, f func(T) error) error {
	ctx, cancelFunc, err := doOpenStream[T](ctx, s)
	if err != nil {
		return err
	}

	// If we reach here, all lifecycle elements have been opened successfully
	// We can defer closing them until the end of the function
	defer func() {
		for _, l := range s.allLifecycleElement {
			l.Close()
		}
		cancelFunc()
	}()

	for {
		// Make sure to check if the context is done before trying to get the next item
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v, err := s.provider(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := f(v); err != nil {
			return err
		}
	}
}

// Collect materializes the stream and collects all elements into a slice.
func (s Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var result []T
	err := s.Consume(ctx, func(v T) {
		result = append(result, v)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MustCollect is a convenience method that panics if the stream errors.
// Should be used for testing purposes or when streams are static (e.g. slice sourced streams).
func (s Stream[T]) MustCollect() []T {
	result, err := s.Collect(context.Background())
	if err != nil {
		panic(err)
	}
	return result
}

// Count counts the number of elements in the stream (materializes the stream).
func (s Stream[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.Consume(ctx, func(T) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s Stream[T]) Filter(predicate func(T) bool) Stream[T] {
	return newStream[T](func(ctx context.Context) (T, error) {
		for {
			v, err := s.provider(ctx)
			if err != nil {
				return v, err
			}
			if predicate(v) {
				return v, nil
			}
		}
	}, s.allLifecycleElement)
}

// WithAdditionalLifecycle attaches an extra lifecycle element to the stream.
// The element is opened after the stream's own lifecycle elements, before the
// first item is emitted.
func (s Stream[T]) WithAdditionalLifecycle(lch Lifecycle) Stream[T] {
	return newStream(s.provider, append(s.allLifecycleElement, lch))
}

func doOpenStream[T any](ctx context.Context, s Stream[T]) (context.Context, context.CancelFunc, error) {
	ctxWithCancel, cancelFunc := context.WithCancel(ctx)

	for lcIdx, l := range s.allLifecycleElement {
		err := l.Open(ctxWithCancel)
		if err != nil {
			// Close only the successfully opened lifecycle elements
			for i := 0; i < lcIdx; i++ {
				s.allLifecycleElement[i].Close()
			}
			// Cancel the context to stop any ongoing operations
			cancelFunc()

			return nil, nil, fmt.Errorf("failed to open stream lifecycle element %d: %w", lcIdx, err)
		}
	}
	return ctxWithCancel, cancelFunc, nil
}

// Empty returns a stream with no elements.
func Empty[T any]() Stream[T] {
	return newStream(func(ctx context.Context) (T, error) {
		return util.DefaultValue[T](), io.EOF
	}, nil)
}

// Error returns a stream that fails with the given error on materialization.
func Error[T any](err error) Stream[T] {
	return newStream[T](func(ctx context.Context) (T, error) {
		return util.DefaultValue[T](), err
	}, []Lifecycle{NewLifecycle(func(_ context.Context) error {
		return err
	}, func() {
		// NOP
	})})
}
