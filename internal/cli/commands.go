package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/seqpar/activity"
	"github.com/utkarsh5026/seqpar/compare"
	"github.com/utkarsh5026/seqpar/task"
)

func (a *app) buildCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run the batch sequentially, then in parallel, and report the difference",
		Example: `  seqpar compare
  seqpar compare --preset extended --format json
  seqpar compare -t fetch:1000 -t parse:500 -n 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd)
		},
	}
}

func (a *app) runCompare(cmd *cobra.Command) error {
	ctx, s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ds, err := s.cfg.Descriptors()
	if err != nil {
		return s.fail(err)
	}

	iterations := s.cfg.Output.Iterations
	c, bar := s.comparator(a.stderr, 2*len(ds)*iterations)

	reports := make([]compare.ComparisonReport, 0, iterations)
	for range iterations {
		rep, err := c.Compare(ctx, ds)
		if err != nil {
			finishBar(bar)
			return s.fail(err)
		}
		reports = append(reports, rep)
	}
	finishBar(bar)

	if iterations == 1 {
		return s.renderer.Comparison(reports[0])
	}
	return s.renderer.Iterations(reports)
}

// buildStrategyCommand runs the batch with a single strategy.
func (a *app) buildStrategyCommand(strategy compare.Strategy) *cobra.Command {
	return &cobra.Command{
		Use:   strategy.String(),
		Short: fmt.Sprintf("Run the batch with the %s strategy only", strategy),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			ds, err := s.cfg.Descriptors()
			if err != nil {
				return s.fail(err)
			}

			c, bar := s.comparator(a.stderr, len(ds))
			rep, err := c.Run(ctx, strategy, ds)
			finishBar(bar)
			if err != nil {
				return s.fail(err)
			}
			return s.renderer.Execution(rep)
		},
	}
}

func (a *app) buildActivityCommand() *cobra.Command {
	var (
		userID    int
		latencyMs int64
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Run the dependent user lookup workflow",
		Long: `Fetches a user, their posts, and the latest post's comments, then logs
the activity and sends a notification. Every step depends on the previous
one, so the chain always runs sequentially.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if cmd.Flags().Changed("user") {
				s.cfg.Activity.UserID = userID
			}
			if cmd.Flags().Changed("latency") {
				if latencyMs < 0 {
					return s.fail(fmt.Errorf("--latency must be non-negative"))
				}
				s.cfg.Activity.LatencyMs = latencyMs
			}

			dirOpts := []activity.DirectoryOption{
				activity.WithLatency(s.cfg.Activity.LatencyMs),
				activity.WithDirectoryLogger(s.log),
				activity.WithSimulator(s.plainSim),
			}
			if s.cfg.Activity.FailureRate > 0 {
				dirOpts = append(dirOpts, activity.WithNetworkFailureRate(s.cfg.Activity.FailureRate, s.cfg.Simulator.Seed))
			}
			dir := activity.NewDirectory(dirOpts...)
			backend := activity.NewMockBackend(dir, s.plainSim, s.cfg.Activity.LatencyMs)

			summary, err := activity.NewWorkflow(backend, s.log).Run(ctx, s.cfg.Activity.UserID)
			if err != nil {
				return s.fail(err)
			}
			return s.renderer.Activity(summary)
		},
	}

	cmd.Flags().IntVarP(&userID, "user", "u", 1, "user id to run the workflow for")
	cmd.Flags().Int64Var(&latencyMs, "latency", activity.DefaultLatencyMs, "simulated latency of every call in milliseconds")
	return cmd
}

// parseTasks turns "id:ms" flag values into descriptors. The id may itself
// contain colons; the duration follows the last one. The flag syntax needs a
// non-empty id even though descriptors from a config file may omit it.
func parseTasks(values []string) ([]task.Descriptor, error) {
	ds := make([]task.Descriptor, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, ":")
		if i <= 0 || i == len(v)-1 {
			return nil, fmt.Errorf("invalid --task %q: want id:duration_ms", v)
		}
		ms, err := strconv.ParseInt(v[i+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --task %q: %w", v, err)
		}
		d := task.Descriptor{ID: v[:i], DurationMs: ms}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --task %q: %w", v, err)
		}
		ds = append(ds, d)
	}
	return ds, nil
}
