package pool

import (
	"context"
	"errors"
)

// ErrWorkerPanic is wrapped by the error returned when a ProcessFunc panics.
var ErrWorkerPanic = errors.New("worker panic")

// ProcessFunc is a function type that defines how individual tasks are processed in the worker pool.
// It takes a context for cancellation/timeout control and a task of type T, returning a result of type R.
// If processing fails, it should return an error which halts the batch.
//
// Type parameters:
//   - T: The type of input task to be processed
//   - R: The type of result produced after processing
type ProcessFunc[T any, R any] func(ctx context.Context, task T) (R, error)

// Result carries a successfully processed value back to Process together
// with the task's position in the input slice. Failed tasks never produce a
// Result; their error stops the batch instead.
type Result[R any] struct {
	Value R
	Index int
}

type indexedTask[T any] struct {
	index int
	task  T
}
