package task

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

var (
	// ErrInjectedFault is returned by FailTasks for the selected IDs.
	ErrInjectedFault = errors.New("injected fault")

	// ErrSimulatedNetwork is returned by FailRandomly.
	ErrSimulatedNetwork = errors.New("network error: failed to complete task")
)

// FailTasks fails every task whose ID is in ids.
func FailTasks(ids ...string) FaultInjector {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(d Descriptor) error {
		if _, ok := set[d.ID]; ok {
			return fmt.Errorf("%w for %s", ErrInjectedFault, d.ID)
		}
		return nil
	}
}

// FailRandomly fails each task with probability rate. The same seed yields
// the same sequence of decisions when tasks are evaluated in the same order.
func FailRandomly(rate float64, seed uint64) FaultInjector {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	return func(d Descriptor) error {
		if rate <= 0 {
			return nil
		}
		mu.Lock()
		roll := rng.Float64()
		mu.Unlock()
		if roll < rate {
			return ErrSimulatedNetwork
		}
		return nil
	}
}

// CombineFaults returns the first error any of fns reports. Nil entries
// are skipped; with no non-nil entries it returns nil.
func CombineFaults(fns ...FaultInjector) FaultInjector {
	var active []FaultInjector
	for _, fn := range fns {
		if fn != nil {
			active = append(active, fn)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(d Descriptor) error {
		for _, fn := range active {
			if err := fn(d); err != nil {
				return err
			}
		}
		return nil
	}
}
