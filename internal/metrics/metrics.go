package metrics

import (
	"context"
	"net/http"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts domain operations and staked tokens. It plugs into the
// services as a campus.OperationLogger.
type Recorder struct {
	operations   *prometheus.CounterVec
	stakedTokens prometheus.Counter
}

// NewRecorder registers the campus collectors on the given registerer.
func NewRecorder(registerer prometheus.Registerer) *Recorder {
	recorder := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_operations_total",
			Help: "Domain operations by operation name and outcome.",
		}, []string{"operation", "status"}),
		stakedTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_staked_tokens_total",
			Help: "Tokens staked through successful bet placements.",
		}),
	}
	registerer.MustRegister(recorder.operations, recorder.stakedTokens)
	return recorder
}

// LogOperation records one operation outcome.
func (recorder *Recorder) LogOperation(_ context.Context, entry campus.OperationLog) {
	recorder.operations.WithLabelValues(entry.Operation, entry.Status).Inc()
	if entry.Error == nil && entry.Amount > 0 {
		recorder.stakedTokens.Add(float64(entry.Amount))
	}
}

// NewRegistry returns a registry preloaded with the standard process and
// Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler exposes a registry in the prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
