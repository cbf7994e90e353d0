// Package pool provides a small generic worker pool for processing a batch of
// tasks concurrently.
//
// The primary type is WorkerPool[T, R], a configurable pool of workers
// which process tasks of type T and return results of type R. Results come
// back in input order no matter which task finishes first.
//
// # Basic Usage
//
//	ctx := context.Background()
//	tasks := []int{1, 2, 3, 4}
//	pool := NewWorkerPool[int, int](WithWorkerCount(4))
//	results, err := pool.Process(ctx, tasks, func(ctx context.Context, t int) (int, error) {
//	    return t * 2, nil
//	})
//
// # Rate Limiting
//
// Control how fast tasks are started:
//
//	pool := NewWorkerPool[string, APIResponse](
//	    WithWorkerCount(10),
//	    WithRateLimit(5.0, 10), // 5 tasks/sec, burst of 10
//	)
//
// # Hooks
//
//	pool := NewWorkerPool[int, string](
//	    WithBeforeTaskStart(func(t int) { log.Printf("start %d", t) }),
//	    WithOnTaskEnd(func(t int, r string, err error) { log.Printf("end %d", t) }),
//	)
//
// Hook signatures are checked against the pool's type parameters when the
// pool is created; a mismatch panics.
//
// # Configuration Options
//
//   - WithWorkerCount(n): Set number of concurrent workers (default: GOMAXPROCS)
//   - WithTaskBuffer(n): Set task channel buffer size (default: worker count)
//   - WithRateLimit(tasksPerSecond, burst): Limit task start throughput
//   - WithBeforeTaskStart(fn), WithOnTaskEnd(fn): Observe task lifecycle
//
// # Error Handling
//
// The pool uses fail-fast semantics: when any task returns an error the
// remaining tasks are cancelled through their context and Process returns
// that first error with no results. Panics inside a task are recovered and
// reported as errors wrapping ErrWorkerPanic.
package pool
