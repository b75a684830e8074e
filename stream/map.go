package stream

import (
	"context"
	"fmt"

	"github.com/Yelp/yelp-sampling/internal/util"
)

// Map maps a Stream of SRC to a Stream of TGT, lazily.
func Map[SRC any, TGT any](src Stream[SRC], mapper func(SRC) TGT) Stream[TGT] {
	return MapWithErr(src, func(v SRC) (TGT, error) {
		return mapper(v), nil
	})
}

// MapWithErr maps a Stream of SRC to a Stream of TGT, allowing the mapper to fail.
func MapWithErr[SRC any, TGT any](src Stream[SRC], mapper func(SRC) (TGT, error)) Stream[TGT] {
	return newStream[TGT](
		func(ctx context.Context) (TGT, error) {
			v, err := src.provider(ctx)
			if err != nil {
				return util.DefaultValue[TGT](), err
			}
			tgt, err := mapper(v)
			if err != nil {
				// Wrapping errors, e.g. we don't want EOF accidentally returned from here
				return util.DefaultValue[TGT](), fmt.Errorf("map failed for stream: %w", err)
			}
			return tgt, nil
		}, src.allLifecycleElement,
	)
}

// MapWhileFiltering maps a Stream of SRC to a Stream of TGT while allowing to filter.
// Filtering is done by returning nil from the mapper function.
func MapWhileFiltering[SRC any, TGT any](src Stream[SRC], mapper func(SRC) *TGT) Stream[TGT] {
	return newStream[TGT](
		func(ctx context.Context) (TGT, error) {
			for {
				v, err := src.provider(ctx)
				if err != nil {
					return util.DefaultValue[TGT](), err
				}
				if tgt := mapper(v); tgt != nil {
					return *tgt, nil
				}
			}
		}, src.allLifecycleElement,
	)
}
