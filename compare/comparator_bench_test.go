package compare

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/utkarsh5026/seqpar/task"
)

func uniformBatch(n int, durationMs int64) []task.Descriptor {
	ds := make([]task.Descriptor, n)
	for i := range ds {
		ds[i] = task.Descriptor{ID: fmt.Sprintf("task-%d", i+1), DurationMs: durationMs}
	}
	return ds
}

// Run with:
//
//	go test -run='^$' -bench=Strategy -benchtime=3x ./compare
//
// With 1ms tasks the parallel strategy should approach a speedup equal to
// the batch size.
func BenchmarkStrategy(b *testing.B) {
	sizes := []int{10, 50, 100}
	c := New(task.NewSimulator().Run)

	for _, n := range sizes {
		ds := uniformBatch(n, 1)
		for _, s := range []Strategy{StrategySequential, StrategyParallel} {
			b.Run(fmt.Sprintf("%s/%d", s, n), func(b *testing.B) {
				for b.Loop() {
					if _, err := c.Run(context.Background(), s, ds); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkParallelOverhead measures the pool's own cost with tasks that do
// not wait at all.
func BenchmarkParallelOverhead(b *testing.B) {
	run := func(ctx context.Context, d task.Descriptor) (task.Result, error) {
		return task.Result{TaskID: d.ID, DurationMs: d.DurationMs}, nil
	}
	ds := uniformBatch(1000, 0)

	for _, workers := range []int{0, 4, 16, 64} {
		name := "unbounded"
		if workers > 0 {
			name = fmt.Sprintf("workers=%d", workers)
		}
		c := New(run, WithConcurrency(workers))
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			start := time.Now()
			for b.Loop() {
				if _, err := c.RunParallel(context.Background(), ds); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(len(ds)*b.N)/time.Since(start).Seconds(), "tasks/sec")
		})
	}
}
