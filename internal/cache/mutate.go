package cache

import (
	"context"
	"fmt"

	"github.com/bassista/go_sole/internal/logger"
)

// Mutate runs fn. Only when it succeeds are the declared keys invalidated and
// OnSuccess called; a failure leaves the cache untouched, calls OnError and is
// returned unchanged.
func Mutate[T any](ctx context.Context, s Invalidator, fn func(context.Context) (T, error), opts ...MutateOption) (T, error) {
	var o mutateOptions
	for _, opt := range opts {
		opt(&o)
	}

	result, err := fn(ctx)
	if err != nil {
		mutationsTotal(s, "error")
		logger.WithComponent("cache").WithError(err).Debug("mutation failed, cache untouched")
		if o.onError != nil {
			o.onError(err)
		}
		var zero T
		return zero, err
	}

	mutationsTotal(s, "success")
	if len(o.invalidates) > 0 {
		s.Invalidate(o.invalidates...)
	}
	if o.onSuccess != nil {
		o.onSuccess(result)
	}
	return result, nil
}

// Typed adapts a typed loader to a Fetcher.
func Typed[T any](fn func(context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

// Get fetches key and returns its data as T.
func Get[T any](ctx context.Context, s Reader, key Key, fetch Fetcher, opts ...QueryOption) (T, Entry, error) {
	var zero T
	e, err := s.Fetch(ctx, key, fetch, opts...)
	if err != nil {
		return zero, e, err
	}
	if e.Data == nil {
		return zero, e, nil
	}
	v, ok := e.Data.(T)
	if !ok {
		return zero, e, fmt.Errorf("cache entry %s holds %T, not %T", key, e.Data, zero)
	}
	return v, e, nil
}

func mutationsTotal(s Invalidator, result string) {
	if st, ok := s.(*Store); ok {
		st.metrics.mutation(result)
	}
}
