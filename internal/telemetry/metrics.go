package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "creative"

// Metrics counts what the assembly pipeline does per query.
type Metrics struct {
	// QueriesTotal counts handled queries. Labels: shape, outcome.
	QueriesTotal *prometheus.CounterVec

	// TemplatesTotal counts executed pathfinder templates. Labels: outcome.
	TemplatesTotal *prometheus.CounterVec

	// ResultsReturned observes the number of results per response. Labels: shape.
	ResultsReturned *prometheus.HistogramVec

	// PrunedTotal counts entries removed by pruning. Labels: kind.
	PrunedTotal *prometheus.CounterVec

	// AssemblyDurationSeconds measures result assembly. Labels: shape.
	AssemblyDurationSeconds *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Queries handled, by shape and outcome.",
		}, []string{"shape", "outcome"}),
		TemplatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pathfinder",
			Name:      "templates_total",
			Help:      "Pathfinder templates executed, by outcome.",
		}, []string{"outcome"}),
		ResultsReturned: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "results_returned",
			Help:      "Results per response.",
			Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000},
		}, []string{"shape"}),
		PrunedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "prune",
			Name:      "removed_total",
			Help:      "Knowledge graph entries removed by pruning, by kind.",
		}, []string{"kind"}),
		AssemblyDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "assembly_duration_seconds",
			Help:      "Time spent assembling a response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"shape"}),
	}
}

// ObservePrune records the removal counts of one prune.
func (m *Metrics) ObservePrune(nodes, edges, auxGraphs int) {
	m.PrunedTotal.WithLabelValues("node").Add(float64(nodes))
	m.PrunedTotal.WithLabelValues("edge").Add(float64(edges))
	m.PrunedTotal.WithLabelValues("aux_graph").Add(float64(auxGraphs))
}
