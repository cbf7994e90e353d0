// Package future provides a single-assignment result handle for work running
// on another goroutine.
package future

import (
	"context"
	"sync"
)

// Future holds the eventual value or error of an asynchronous operation.
// It is resolved exactly once; every read after that returns the same outcome.
type Future[R any] struct {
	once  sync.Once
	done  chan struct{}
	value R
	err   error
}

// New returns an unresolved Future.
func New[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a Future resolved with its outcome.
func Go[R any](fn func() (R, error)) *Future[R] {
	f := New[R]()
	go func() {
		f.Resolve(fn())
	}()
	return f
}

// Resolve sets the outcome. Only the first call has any effect; it reports
// whether this call was the one that resolved the future.
func (f *Future[R]) Resolve(value R, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Get blocks until the future is resolved.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext blocks until the future is resolved or ctx is done.
// A ctx error does not resolve the future; a later Get still sees the real outcome.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// TryGet returns the outcome without blocking. ready is false while unresolved.
func (f *Future[R]) TryGet() (value R, err error, ready bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero R
		return zero, nil, false
	}
}

// Done returns a channel closed once the future is resolved.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future has been resolved.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// All waits for every future in order and returns their values in the same order.
// It stops at the first error it encounters while walking the slice.
func All[R any](ctx context.Context, futures []*Future[R]) ([]R, error) {
	values := make([]R, len(futures))
	for i, f := range futures {
		v, err := f.GetWithContext(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
