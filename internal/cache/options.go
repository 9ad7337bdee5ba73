package cache

import (
	"context"
	"time"
)

// Fetcher loads the value of one key. It runs on a store goroutine with the
// store's context, never the context of the view that asked for it.
type Fetcher func(ctx context.Context) (any, error)

type queryOptions struct {
	enabled         bool
	refetchInterval time.Duration
	staleTime       time.Duration
	staleTimeSet    bool
	selectFn        func(any) any
}

// QueryOption configures a query or subscription.
type QueryOption func(*queryOptions)

// WithEnabled gates fetching. A disabled query stays idle and sends nothing,
// which is how dependent queries wait for their parent value.
func WithEnabled(enabled bool) QueryOption {
	return func(o *queryOptions) { o.enabled = enabled }
}

// WithRefetchInterval polls a subscribed entry every d.
func WithRefetchInterval(d time.Duration) QueryOption {
	return func(o *queryOptions) { o.refetchInterval = d }
}

// WithStaleTime lets data go stale d after it was fetched. Zero keeps data
// fresh until it is invalidated.
func WithStaleTime(d time.Duration) QueryOption {
	return func(o *queryOptions) {
		o.staleTime = d
		o.staleTimeSet = true
	}
}

// WithSelect projects the raw data on read. The cache keeps the raw value.
func WithSelect(fn func(any) any) QueryOption {
	return func(o *queryOptions) { o.selectFn = fn }
}

func buildQueryOptions(defaultStale time.Duration, opts []QueryOption) queryOptions {
	o := queryOptions{enabled: true, staleTime: defaultStale}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o queryOptions) project(e Entry) Entry {
	if o.selectFn != nil && e.Data != nil {
		e.Data = o.selectFn(e.Data)
	}
	return e
}

type mutateOptions struct {
	invalidates []Key
	onSuccess   func(any)
	onError     func(error)
}

// MutateOption configures a mutation.
type MutateOption func(*mutateOptions)

// Invalidates lists the keys to invalidate once the mutation succeeded.
func Invalidates(keys ...Key) MutateOption {
	return func(o *mutateOptions) { o.invalidates = append(o.invalidates, keys...) }
}

// OnSuccess runs after a successful mutation and its invalidation.
func OnSuccess(fn func(result any)) MutateOption {
	return func(o *mutateOptions) { o.onSuccess = fn }
}

// OnError runs when the mutation failed.
func OnError(fn func(err error)) MutateOption {
	return func(o *mutateOptions) { o.onError = fn }
}
