package stream

import (
	"context"

	"github.com/Yelp/yelp-sampling/internal/util"
)

// Reduce consumes the entire stream and combines values using the given reduceFunc,
// starting from the provided initialValue. It returns the final accumulated result.
func Reduce[T any, R any](
	ctx context.Context,
	s Stream[T],
	initialValue R,
	reduceFunc func(acc R, v T) R,
) (R, error) {
	return ReduceWithErr(ctx, s, initialValue, func(acc R, v T) (R, error) {
		return reduceFunc(acc, v), nil
	})
}

// ReduceWithErr consumes the entire stream and combines values using the given reduceFunc,
// starting from the provided initialValue. It returns the final accumulated result.
func ReduceWithErr[T any, R any](
	ctx context.Context,
	s Stream[T],
	initialValue R,
	reduceFunc func(acc R, v T) (R, error),
) (R, error) {
	ret := initialValue
	err := s.ConsumeWithErr(ctx, func(v T) error {
		var err error
		ret, err = reduceFunc(ret, v)
		return err
	})
	if err != nil {
		return util.DefaultValue[R](), err
	}
	return ret, nil
}
