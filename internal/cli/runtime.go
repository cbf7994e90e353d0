package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/utkarsh5026/seqpar/compare"
	"github.com/utkarsh5026/seqpar/internal/config"
	"github.com/utkarsh5026/seqpar/internal/logger"
	"github.com/utkarsh5026/seqpar/internal/metrics"
	"github.com/utkarsh5026/seqpar/internal/tracing"
	"github.com/utkarsh5026/seqpar/report"
	"github.com/utkarsh5026/seqpar/task"
	"go.uber.org/zap"
)

// session is everything a command needs once configuration is resolved.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	metrics  *metrics.Collector
	sim      *task.Simulator
	renderer *report.Renderer
	format   report.Format

	// plainSim has no fault injectors; the activity workflow draws its
	// failures from activity.failure_rate alone.
	plainSim *task.Simulator

	shutdown []func(context.Context) error
}

// open loads configuration and wires logging, tracing, metrics and the
// simulator. The returned context is cancelled on SIGINT or SIGTERM.
func (a *app) open(cmd *cobra.Command) (context.Context, *session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	format, _ := report.ParseFormat(cfg.Output.Format)

	console := a.stderr
	if cfg.Log.Output == "stdout" {
		console = a.stdout
	}
	log, err := logger.NewWithWriter(cfg.Log, console)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)

	s := &session{
		cfg:      cfg,
		log:      log,
		metrics:  metrics.NewCollector("seqpar"),
		renderer: report.NewRenderer(a.stdout, format),
		format:   format,
	}
	s.shutdown = append(s.shutdown, func(context.Context) error {
		stop()
		return nil
	})

	shutdownTracing, err := tracing.Initialize(ctx, cfg.Tracing, log)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.shutdown = append(s.shutdown, shutdownTracing)

	if cfg.Metrics.Addr != "" {
		serveCtx, cancelServe := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := s.metrics.Serve(serveCtx, cfg.Metrics.Addr, log); err != nil {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		s.shutdown = append(s.shutdown, func(context.Context) error {
			cancelServe()
			<-done
			return nil
		})
	}

	var faults []task.FaultInjector
	if len(cfg.Simulator.FailTasks) > 0 {
		faults = append(faults, task.FailTasks(cfg.Simulator.FailTasks...))
	}
	if cfg.Simulator.FailureRate > 0 {
		faults = append(faults, task.FailRandomly(cfg.Simulator.FailureRate, cfg.Simulator.Seed))
	}
	s.sim = task.NewSimulator(
		task.WithLogger(log),
		task.WithTracer(tracing.Tracer()),
		task.WithFaultInjector(task.CombineFaults(faults...)),
	)
	s.plainSim = task.NewSimulator(
		task.WithLogger(log),
		task.WithTracer(tracing.Tracer()),
	)

	return ctx, s, nil
}

// close flushes metrics and tears down in reverse setup order.
func (s *session) close() {
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			s.log.Error("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.shutdown) - 1; i >= 0; i-- {
		if err := s.shutdown[i](ctx); err != nil {
			s.log.Error("Shutdown error", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

// comparator builds a Comparator from the parallel settings. total is the
// number of task runs the progress bar should expect; zero disables it.
func (s *session) comparator(progressOut io.Writer, total int) (*compare.Comparator, *progressbar.ProgressBar) {
	opts := []compare.Option{
		compare.WithLogger(s.log),
		compare.WithConcurrency(s.cfg.Parallel.Concurrency),
		compare.WithMetrics(s.metrics),
	}
	if s.cfg.Parallel.RateLimit > 0 {
		opts = append(opts, compare.WithRateLimit(s.cfg.Parallel.RateLimit, s.cfg.Parallel.Burst))
	}

	var bar *progressbar.ProgressBar
	if s.cfg.Output.Progress && total > 0 {
		bar = makeProgressBar(progressOut, total)
		opts = append(opts, compare.WithHooks(
			func(st compare.Strategy, d task.Descriptor) {
				bar.Describe(fmt.Sprintf("%-10s %s", st, d.ID))
			},
			func(compare.Strategy, task.Descriptor, task.Result, error) {
				_ = bar.Add(1)
			},
		))
	}

	return compare.New(s.sim.Run, opts...), bar
}

func makeProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running tasks"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}

// shownError marks an error already rendered on stdout so the top-level
// reporter does not print it a second time.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// fail renders err in the table format. Structured formats keep stdout
// clean and leave the error to the top-level reporter on stderr.
func (s *session) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		s.log.Warn("Interrupted")
	}
	if s.format != report.FormatTable {
		return err
	}
	s.renderer.Failure(err)
	return &shownError{err: err}
}
