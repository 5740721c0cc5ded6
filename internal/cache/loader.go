package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it no longer follows the
// caller that started it.
const DefaultLoadTimeout = 10 * time.Second

// Loader fills a cache on miss. Concurrent misses for the same key share a
// single call to the load function.
type Loader[T any] struct {
	cache   Cache[T]
	group   singleflight.Group
	timeout time.Duration
}

func NewLoader[T any](c Cache[T]) *Loader[T] {
	return &Loader[T]{cache: c, timeout: DefaultLoadTimeout}
}

// Get returns the cached value for key, calling load when it is missing.
// Errors are not cached.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	// The shared load outlives any single caller. A caller whose ctx ends
	// stops waiting without cancelling it.
	ch := l.group.DoChan(key, func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, v)
		return v, nil
	})

	var res any
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			var zero T
			return zero, r.Err
		}
		res = r.Val
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache loader: unexpected value type %T for key %q", res, key)
	}
	return v, nil
}

// Forget drops key from the cache and from any in-flight load.
func (l *Loader[T]) Forget(key string) {
	l.group.Forget(key)
	l.cache.Delete(key)
}

// ForgetPrefix drops every cached key that starts with prefix.
func (l *Loader[T]) ForgetPrefix(prefix string) int {
	return l.cache.DeletePrefix(prefix)
}
