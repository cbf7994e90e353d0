package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/seqpar/compare"
	"github.com/utkarsh5026/seqpar/internal/config"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// options holds raw flag values. Only flags the user actually set override
// the loaded configuration.
type options struct {
	configFile string

	tasks       []string
	preset      string
	format      string
	concurrency int
	rate        float64
	burst       int
	fail        []string
	failureRate float64
	seed        uint64
	iterations  int
	progress    bool
	logLevel    string
	metricsAddr string
	metricsFile string
	tracing     bool
}

type app struct {
	opts   options
	stdout io.Writer
	stderr io.Writer
}

// BuildCLI assembles the seqpar command tree writing to the process streams.
func BuildCLI() *cobra.Command {
	enableVirtualTerminal()
	return newRootCommand(os.Stdout, os.Stderr)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(BuildCLI(), os.Stderr)
}

// run executes cmd and prints any error not already rendered, exactly once.
func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var shown *shownError
	if !errors.As(err, &shown) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "seqpar",
		Short: "Compare sequential and parallel execution of simulated tasks",
		Long: `seqpar runs a batch of simulated delayed tasks twice:
- sequentially, each task starting after the previous one completed
- in parallel, every task started at once

It then reports the wall-clock time of both strategies and the difference.
Running without a subcommand is the same as "seqpar compare".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	a.bindFlags(rootCmd)

	rootCmd.AddCommand(a.buildCompareCommand())
	rootCmd.AddCommand(a.buildStrategyCommand(compare.StrategySequential))
	rootCmd.AddCommand(a.buildStrategyCommand(compare.StrategyParallel))
	rootCmd.AddCommand(a.buildActivityCommand())
	rootCmd.AddCommand(a.buildVersionCommand())

	return rootCmd
}

func (a *app) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&a.opts.configFile, "config", "c", "", "config file path (YAML)")
	f.StringArrayVarP(&a.opts.tasks, "task", "t", nil, "task as id:duration_ms, repeatable; replaces the preset")
	f.StringVarP(&a.opts.preset, "preset", "p", compare.PresetBasic, fmt.Sprintf("task preset: %v", compare.PresetNames()))
	f.StringVarP(&a.opts.format, "format", "f", "table", "output format: table, json, yaml")
	f.IntVar(&a.opts.concurrency, "concurrency", 0, "max tasks running at once in parallel mode (0 = one per task)")
	f.Float64Var(&a.opts.rate, "rate", 0, "max tasks started per second in parallel mode (0 = unlimited)")
	f.IntVar(&a.opts.burst, "burst", 1, "tasks allowed to start at once when --rate is set")
	f.StringSliceVar(&a.opts.fail, "fail", nil, "task ids that fail after their wait")
	f.Float64Var(&a.opts.failureRate, "failure-rate", 0, "probability that any task fails after its wait")
	f.Uint64Var(&a.opts.seed, "seed", 1, "seed for --failure-rate")
	f.IntVarP(&a.opts.iterations, "iterations", "n", 1, "repeat the comparison and summarize")
	f.BoolVar(&a.opts.progress, "progress", false, "show a progress bar on stderr")
	f.StringVar(&a.opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&a.opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.StringVar(&a.opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	f.BoolVar(&a.opts.tracing, "tracing", false, "export OpenTelemetry spans over OTLP/HTTP")
}

// loadConfig reads the config file and environment, then applies every flag
// the user set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Preset = a.opts.preset
		cfg.Tasks = nil
	}
	if flags.Changed("task") {
		tasks, err := parseTasks(a.opts.tasks)
		if err != nil {
			return nil, err
		}
		cfg.Tasks = tasks
	}
	if flags.Changed("format") {
		cfg.Output.Format = a.opts.format
	}
	if flags.Changed("concurrency") {
		cfg.Parallel.Concurrency = a.opts.concurrency
	}
	if flags.Changed("rate") {
		cfg.Parallel.RateLimit = a.opts.rate
		if cfg.Parallel.Burst <= 0 || flags.Changed("burst") {
			cfg.Parallel.Burst = a.opts.burst
		}
	} else if flags.Changed("burst") {
		cfg.Parallel.Burst = a.opts.burst
	}
	if flags.Changed("fail") {
		cfg.Simulator.FailTasks = a.opts.fail
	}
	if flags.Changed("failure-rate") {
		cfg.Simulator.FailureRate = a.opts.failureRate
	}
	if flags.Changed("seed") {
		cfg.Simulator.Seed = a.opts.seed
	}
	if flags.Changed("iterations") {
		cfg.Output.Iterations = a.opts.iterations
	}
	if flags.Changed("progress") {
		cfg.Output.Progress = a.opts.progress
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.opts.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.opts.metricsAddr
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = a.opts.metricsFile
	}
	if flags.Changed("tracing") {
		cfg.Tracing.Enabled = a.opts.tracing
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *app) buildVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the seqpar version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(a.stdout, "seqpar %s\n", Version)
		},
	}
}
