// Package compare runs one batch of tasks sequentially and in parallel and
// measures the wall-clock difference between the two strategies.
//
// Basic usage:
//
//	sim := task.NewSimulator()
//	c := compare.New(sim.Run)
//	report, err := c.Compare(ctx, []task.Descriptor{
//	    {ID: "task-1", DurationMs: 1000},
//	    {ID: "task-2", DurationMs: 500},
//	})
//
// The sequential strategy starts task i+1 only after task i completed. The
// parallel strategy starts every task without waiting and collects results
// in input order. A parallel failure cancels the remaining tasks and no
// partial report is produced.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/utkarsh5026/seqpar/internal/metrics"
	"github.com/utkarsh5026/seqpar/pool"
	"github.com/utkarsh5026/seqpar/task"
	"go.uber.org/zap"
)

// StartHook is called right before a task begins.
type StartHook func(s Strategy, d task.Descriptor)

// EndHook is called after a task finished, successfully or not.
type EndHook func(s Strategy, d task.Descriptor, r task.Result, err error)

// Comparator executes task batches with a RunFunc.
type Comparator struct {
	run task.RunFunc
	log *zap.Logger

	concurrency int
	rateLimit   float64
	burst       int

	metrics *metrics.Collector
	onStart StartHook
	onEnd   EndHook
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithLogger sets the logger for batch-level notices.
func WithLogger(log *zap.Logger) Option {
	return func(c *Comparator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithConcurrency caps the number of tasks the parallel strategy runs at
// once. Zero or negative means one worker per task.
func WithConcurrency(n int) Option {
	return func(c *Comparator) {
		c.concurrency = n
	}
}

// WithRateLimit limits how fast the parallel strategy starts tasks.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Comparator) {
		c.rateLimit = perSecond
		c.burst = burst
	}
}

// WithMetrics records task and batch outcomes into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Comparator) {
		c.metrics = m
	}
}

// WithHooks registers per-task callbacks. Either may be nil. In the parallel
// strategy they are called from worker goroutines.
func WithHooks(onStart StartHook, onEnd EndHook) Option {
	return func(c *Comparator) {
		c.onStart = onStart
		c.onEnd = onEnd
	}
}

// New creates a Comparator that executes each descriptor with run.
func New(run task.RunFunc, opts ...Option) *Comparator {
	c := &Comparator{
		run: run,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes ds with the given strategy.
func (c *Comparator) Run(ctx context.Context, s Strategy, ds []task.Descriptor) (ExecutionReport, error) {
	switch s {
	case StrategySequential:
		return c.RunSequential(ctx, ds)
	case StrategyParallel:
		return c.RunParallel(ctx, ds)
	default:
		return ExecutionReport{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// RunSequential executes ds one at a time in input order. The first failure
// stops the batch and is returned as a *task.TaskFailure.
func (c *Comparator) RunSequential(ctx context.Context, ds []task.Descriptor) (ExecutionReport, error) {
	if err := task.ValidateAll(ds); err != nil {
		return ExecutionReport{}, err
	}

	c.log.Info("Starting sequential execution", zap.Int("tasks", len(ds)))

	results := make([]task.Result, 0, len(ds))
	start := time.Now()
	for _, d := range ds {
		c.taskStarted(StrategySequential, d)
		res, err := c.execute(ctx, d)
		c.taskEnded(StrategySequential, d, res, err)
		if err != nil {
			c.batchFinished(StrategySequential, time.Since(start), err)
			return ExecutionReport{}, fmt.Errorf("sequential execution stopped: %w", err)
		}
		results = append(results, res)
	}
	elapsed := time.Since(start)

	report := ExecutionReport{
		Strategy:    StrategySequential,
		Results:     results,
		TotalTimeMs: elapsed.Milliseconds(),
		Elapsed:     elapsed,
	}
	c.batchFinished(StrategySequential, elapsed, nil)
	c.logReport(report)
	return report, nil
}

// RunParallel starts every descriptor without waiting for the others and
// returns once all completed. Results are in input order. The first failure
// cancels the tasks still running and is returned as a *BatchFailure.
func (c *Comparator) RunParallel(ctx context.Context, ds []task.Descriptor) (ExecutionReport, error) {
	if err := task.ValidateAll(ds); err != nil {
		return ExecutionReport{}, err
	}

	workers := len(ds)
	if c.concurrency > 0 && c.concurrency < workers {
		workers = c.concurrency
	}

	p := pool.NewWorkerPool[task.Descriptor, task.Result](
		pool.WithWorkerCount(workers),
		pool.WithTaskBuffer(len(ds)),
		pool.WithRateLimit(c.rateLimit, c.burst),
		pool.WithBeforeTaskStart(func(d task.Descriptor) {
			c.taskStarted(StrategyParallel, d)
		}),
		pool.WithOnTaskEnd(func(d task.Descriptor, r task.Result, err error) {
			c.taskEnded(StrategyParallel, d, r, err)
		}),
	)

	c.log.Info("Starting parallel execution",
		zap.Int("tasks", len(ds)),
		zap.Int("workers", p.WorkerCount()),
	)

	start := time.Now()
	results, err := p.Process(ctx, ds, c.execute)
	elapsed := time.Since(start)
	if err != nil {
		c.batchFinished(StrategyParallel, elapsed, err)
		return ExecutionReport{}, &BatchFailure{Strategy: StrategyParallel, Err: err}
	}

	report := ExecutionReport{
		Strategy:    StrategyParallel,
		Results:     results,
		TotalTimeMs: elapsed.Milliseconds(),
		Elapsed:     elapsed,
	}
	c.batchFinished(StrategyParallel, elapsed, nil)
	c.logReport(report)
	return report, nil
}

// Compare runs ds sequentially and then in parallel. Nothing is cached
// between the two runs.
func (c *Comparator) Compare(ctx context.Context, ds []task.Descriptor) (ComparisonReport, error) {
	report := ComparisonReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	seq, err := c.RunSequential(ctx, ds)
	if err != nil {
		return ComparisonReport{}, err
	}
	par, err := c.RunParallel(ctx, ds)
	if err != nil {
		return ComparisonReport{}, err
	}

	report.Sequential = seq
	report.Parallel = par
	report.TimeDifferenceMs = seq.TotalTimeMs - par.TotalTimeMs

	if c.metrics != nil {
		c.metrics.ComparisonFinished(report.Speedup(), seq.Elapsed-par.Elapsed)
	}
	c.log.Info("Comparison completed",
		zap.String("run_id", report.RunID),
		zap.Int64("time_difference_ms", report.TimeDifferenceMs),
		zap.Float64("speedup", report.Speedup()),
	)
	return report, nil
}

// execute runs one descriptor and normalises any error into a
// *task.TaskFailure naming it.
func (c *Comparator) execute(ctx context.Context, d task.Descriptor) (task.Result, error) {
	res, err := c.run(ctx, d)
	if err != nil {
		var failure *task.TaskFailure
		if !errors.As(err, &failure) {
			err = &task.TaskFailure{TaskID: d.ID, Err: err}
		}
		return task.Result{}, err
	}
	return res, nil
}

func (c *Comparator) taskStarted(s Strategy, d task.Descriptor) {
	if c.metrics != nil {
		c.metrics.TaskStarted(s.String())
	}
	if c.onStart != nil {
		c.onStart(s, d)
	}
}

func (c *Comparator) taskEnded(s Strategy, d task.Descriptor, r task.Result, err error) {
	if c.metrics != nil {
		c.metrics.TaskFinished(s.String(), r.Elapsed, err)
	}
	if c.onEnd != nil {
		c.onEnd(s, d, r, err)
	}
}

func (c *Comparator) batchFinished(s Strategy, elapsed time.Duration, err error) {
	if c.metrics != nil {
		c.metrics.BatchFinished(s.String(), elapsed, err)
	}
	if err != nil {
		c.log.Warn("Execution failed",
			zap.String("strategy", s.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}

func (c *Comparator) logReport(r ExecutionReport) {
	c.log.Info("Execution completed",
		zap.String("strategy", r.Strategy.String()),
		zap.Int64("total_time_ms", r.TotalTimeMs),
		zap.Int("results", len(r.Results)),
	)
	if ce := c.log.Check(zap.DebugLevel, "Execution results"); ce != nil {
		ce.Write(zap.Any("results", r.Results))
	}
}
