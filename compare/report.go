package compare

import (
	"errors"
	"fmt"
	"time"

	"github.com/utkarsh5026/seqpar/task"
)

// Strategy names how a batch is executed.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// ErrUnknownStrategy is returned by ParseStrategy and Comparator.Run.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ParseStrategy converts a name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategySequential, StrategyParallel:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) String() string {
	return string(s)
}

// ExecutionReport is the outcome of running one batch under one strategy.
// Results has one entry per descriptor in input order and is never nil.
type ExecutionReport struct {
	Strategy    Strategy      `json:"strategy" yaml:"strategy"`
	Results     []task.Result `json:"results" yaml:"results"`
	TotalTimeMs int64         `json:"total_time_ms" yaml:"total_time_ms"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
}

// ComparisonReport pairs the sequential and parallel runs of one batch.
type ComparisonReport struct {
	RunID            string          `json:"run_id" yaml:"run_id"`
	StartedAt        time.Time       `json:"started_at" yaml:"started_at"`
	Sequential       ExecutionReport `json:"sequential" yaml:"sequential"`
	Parallel         ExecutionReport `json:"parallel" yaml:"parallel"`
	TimeDifferenceMs int64           `json:"time_difference_ms" yaml:"time_difference_ms"`
}

// Speedup is the ratio of sequential to parallel wall time. It is zero when
// the parallel run took no measurable time.
func (r ComparisonReport) Speedup() float64 {
	if r.Parallel.Elapsed <= 0 {
		return 0
	}
	return float64(r.Sequential.Elapsed) / float64(r.Parallel.Elapsed)
}

// BatchFailure wraps the first task failure that aborted a batch.
type BatchFailure struct {
	Strategy Strategy
	Err      error
}

func (f *BatchFailure) Error() string {
	return fmt.Sprintf("%s batch failed: %v", f.Strategy, f.Err)
}

func (f *BatchFailure) Unwrap() error {
	return f.Err
}
