package pool

import (
	"fmt"
	"runtime"
)

// checkfuncs validates user-supplied hook functions against the pool's type parameters and
// returns them in their typed form.
//
// Panics:
//
//	If any hook's signature does not match the pool's task/result types.
//	The panic message names the offending option and both types.
func checkfuncs[T any, R any](cfg *workerPoolConfig) (
	beforeTaskStart func(T),
	onTaskEnd func(T, R, error),
) {
	if cfg.beforeTaskStart != nil {
		fn, ok := cfg.beforeTaskStart.(func(T))
		if !ok {
			var zeroT T
			panic(fmt.Sprintf("WithBeforeTaskStart hook expects task type %s, but pool processes type %T",
				cfg.beforeTaskStartType, zeroT))
		}
		beforeTaskStart = fn
	}

	if cfg.onTaskEnd != nil {
		fn, ok := cfg.onTaskEnd.(func(T, R, error))
		if !ok {
			panic(fmt.Sprintf("WithOnTaskEnd hook has signature %s, but pool expects %T",
				cfg.onTaskEndType, (func(T, R, error))(nil)))
		}
		onTaskEnd = fn
	}

	return beforeTaskStart, onTaskEnd
}

func createConfig(opts ...WorkerPoolOption) *workerPoolConfig {
	cfg := &workerPoolConfig{
		workerCount: runtime.GOMAXPROCS(0),
		taskBuffer:  0, // Will be set to workerCount if not specified
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.taskBuffer == 0 {
		cfg.taskBuffer = cfg.workerCount
	}
	return cfg
}
