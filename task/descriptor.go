package task

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDescriptor is returned for descriptors with a negative duration.
var ErrInvalidDescriptor = errors.New("invalid task descriptor")

// Descriptor names a unit of simulated work and how long it takes.
type Descriptor struct {
	ID         string `json:"id" yaml:"id" mapstructure:"id"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms" mapstructure:"duration_ms"`
}

// Duration returns the requested duration as a time.Duration.
func (d Descriptor) Duration() time.Duration {
	return time.Duration(d.DurationMs) * time.Millisecond
}

// Validate reports whether d can be simulated. Any ID, including the empty
// string, is accepted.
func (d Descriptor) Validate() error {
	if d.DurationMs < 0 {
		return fmt.Errorf("%w: task %q has negative duration %dms", ErrInvalidDescriptor, d.ID, d.DurationMs)
	}
	return nil
}

// ValidateAll validates every descriptor in order and reports the first
// offending index. Duplicate IDs are allowed.
func ValidateAll(ds []Descriptor) error {
	for i, d := range ds {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("descriptor %d: %w", i, err)
		}
	}
	return nil
}

// Result is what a completed simulation yields. DurationMs echoes the
// requested duration; Elapsed is the wall time actually observed.
type Result struct {
	TaskID     string        `json:"task_id" yaml:"task_id"`
	DurationMs int64         `json:"duration_ms" yaml:"duration_ms"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// RunFunc executes one descriptor. Simulator.Run satisfies it.
type RunFunc func(ctx context.Context, d Descriptor) (Result, error)

// TaskFailure reports that a specific task did not complete.
type TaskFailure struct {
	TaskID string
	Err    error
}

func (f *TaskFailure) Error() string {
	return fmt.Sprintf("task %s failed: %v", f.TaskID, f.Err)
}

func (f *TaskFailure) Unwrap() error {
	return f.Err
}
