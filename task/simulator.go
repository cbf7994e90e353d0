// Package task simulates delayed units of work.
//
// A Simulator waits on a timer for the requested duration and yields a
// Result. It never fails on its own; failures only come from a cancelled
// context or from an injected fault.
package task

import (
	"context"
	"time"

	"github.com/utkarsh5026/seqpar/internal/future"
	"github.com/utkarsh5026/seqpar/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FaultInjector decides, after a task's wait has elapsed, whether the task
// fails anyway. A nil error lets the task complete.
type FaultInjector func(d Descriptor) error

// Simulator runs simulated tasks.
type Simulator struct {
	log    *zap.Logger
	tracer trace.Tracer
	fault  FaultInjector
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger that receives started/completed notices.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracer sets the tracer used to open one span per task.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Simulator) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithFaultInjector installs fn to fail selected tasks.
func WithFaultInjector(fn FaultInjector) Option {
	return func(s *Simulator) {
		s.fault = fn
	}
}

// NewSimulator creates a simulator. Without options it logs nothing and
// uses the global tracer provider.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		log:    zap.NewNop(),
		tracer: tracing.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate blocks for durationMs and returns a Result for id. A zero
// duration still waits for the timer to fire.
func (s *Simulator) Simulate(ctx context.Context, id string, durationMs int64) (Result, error) {
	d := Descriptor{ID: id, DurationMs: durationMs}
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := s.tracer.Start(ctx, "task.simulate",
		trace.WithAttributes(tracing.TaskAttributes(id, durationMs)...),
	)
	defer span.End()

	s.log.Info("Task started",
		zap.String("task_id", id),
		zap.Int64("duration_ms", durationMs),
	)

	start := time.Now()
	timer := time.NewTimer(d.Duration())
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		failure := &TaskFailure{TaskID: id, Err: ctx.Err()}
		span.RecordError(failure)
		span.SetStatus(codes.Error, "cancelled")
		s.log.Warn("Task cancelled",
			zap.String("task_id", id),
			zap.Duration("waited", time.Since(start)),
			zap.Error(ctx.Err()),
		)
		return Result{}, failure
	}

	elapsed := time.Since(start)

	if s.fault != nil {
		if err := s.fault(d); err != nil {
			failure := &TaskFailure{TaskID: id, Err: err}
			span.RecordError(failure)
			span.SetStatus(codes.Error, "fault injected")
			s.log.Warn("Task failed",
				zap.String("task_id", id),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			return Result{}, failure
		}
	}

	span.SetAttributes(attribute.Int64("task.elapsed_ms", elapsed.Milliseconds()))
	s.log.Info("Task completed",
		zap.String("task_id", id),
		zap.Int64("duration_ms", durationMs),
		zap.Duration("elapsed", elapsed),
	)

	return Result{TaskID: id, DurationMs: durationMs, Elapsed: elapsed}, nil
}

// Run simulates d. It has the RunFunc signature.
func (s *Simulator) Run(ctx context.Context, d Descriptor) (Result, error) {
	return s.Simulate(ctx, d.ID, d.DurationMs)
}

// Start begins simulating d on its own goroutine and returns immediately.
func (s *Simulator) Start(ctx context.Context, d Descriptor) *future.Future[Result] {
	return future.Go(func() (Result, error) {
		return s.Run(ctx, d)
	})
}
