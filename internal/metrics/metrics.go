// Package metrics exposes Prometheus instrumentation for task batches.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Collector holds every metric recorded during a comparison run. Each
// collector owns its registry so that several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	TasksTotal     *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	TasksInFlight  *prometheus.GaugeVec
	BatchesTotal   *prometheus.CounterVec
	BatchDuration  *prometheus.HistogramVec
	LastSpeedup    prometheus.Gauge
	LastDifference prometheus.Gauge
}

// NewCollector creates and registers all metrics under namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of simulated tasks by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Observed wall-clock duration of a simulated task",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		TasksInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks_in_flight",
				Help:      "Number of tasks currently waiting",
			},
			[]string{"strategy"},
		),
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Total number of batches by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Wall-clock duration of a whole batch",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13},
			},
			[]string{"strategy"},
		),
		LastSpeedup: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_speedup_ratio",
				Help:      "Sequential total divided by parallel total for the latest comparison",
			},
		),
		LastDifference: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_time_difference_seconds",
				Help:      "Sequential total minus parallel total for the latest comparison",
			},
		),
	}
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TaskStarted marks one task of strategy as in flight.
func (c *Collector) TaskStarted(strategy string) {
	c.TasksInFlight.WithLabelValues(strategy).Inc()
}

// TaskFinished records the outcome of one task.
func (c *Collector) TaskFinished(strategy string, elapsed time.Duration, err error) {
	c.TasksInFlight.WithLabelValues(strategy).Dec()
	c.TasksTotal.WithLabelValues(strategy, status(err)).Inc()
	if err == nil {
		c.TaskDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	}
}

// BatchFinished records the outcome of a whole batch.
func (c *Collector) BatchFinished(strategy string, elapsed time.Duration, err error) {
	c.BatchesTotal.WithLabelValues(strategy, status(err)).Inc()
	c.BatchDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ComparisonFinished records the headline numbers of a comparison.
func (c *Collector) ComparisonFinished(speedup float64, difference time.Duration) {
	c.LastSpeedup.Set(speedup)
	c.LastDifference.Set(difference.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current values in the Prometheus text format,
// suitable for a node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", zap.Error(err))
		return err
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
