// Package metrics exposes Prometheus collectors for task batch execution.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/equipment"
)

// Recorder observes executed batches and failed tasks
type Recorder interface {
	Execution(code equipment.ResponseCode, duration time.Duration)
	TaskFailure(taskType equipment.TaskType, kind string)
}

// Nop discards all observations
type Nop struct{}

func (Nop) Execution(equipment.ResponseCode, time.Duration) {}
func (Nop) TaskFailure(equipment.TaskType, string)         {}

// Prometheus records observations into Prometheus collectors
type Prometheus struct {
	executions *prometheus.CounterVec
	duration   prometheus.Histogram
	failures   *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecr",
			Name:      "executions_total",
			Help:      "Task batches executed, by result code.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecr",
			Name:      "execution_duration_seconds",
			Help:      "Time spent executing a task batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecr",
			Name:      "task_failures_total",
			Help:      "Tasks that aborted a batch, by task type and error kind.",
		}, []string{"type", "kind"}),
	}

	for _, c := range []prometheus.Collector{p.executions, p.duration, p.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Execution(code equipment.ResponseCode, duration time.Duration) {
	p.executions.WithLabelValues(code.String()).Inc()
	p.duration.Observe(duration.Seconds())
}

func (p *Prometheus) TaskFailure(taskType equipment.TaskType, kind string) {
	p.failures.WithLabelValues(taskType.String(), kind).Inc()
}

// Serve starts an HTTP server exposing gatherer on /metrics in the background.
// The returned server should be closed by the caller.
func Serve(address string, gatherer prometheus.Gatherer, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", zap.String("address", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
