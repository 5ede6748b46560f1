package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOptimal     = "optimal"
	ResultUnreachable = "unreachable"
	ResultAborted     = "aborted"
	ResultFailed      = "failed"
)

// Search summarizes one condensation.
type Search struct {
	Result               string
	Concepts             int
	Clauses              int
	Nodes                uint64
	Leaves               uint64
	PrunedByLength       uint64
	PrunedByReachability uint64
	Duration             time.Duration
}

// Recorder collects search statistics in its own registry. A nil Recorder
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	searches *prometheus.CounterVec
	nodes    prometheus.Counter
	leaves   prometheus.Counter
	pruned   *prometheus.CounterVec
	duration prometheus.Histogram
	clauses  prometheus.Histogram
	concepts prometheus.Histogram
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "condenser_searches_total",
			Help: "Number of condensations by result",
		}, []string{"result"}),
		nodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "condenser_search_nodes_total",
			Help: "Search tree nodes visited",
		}),
		leaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "condenser_search_leaves_total",
			Help: "Complete assignments evaluated",
		}),
		pruned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "condenser_search_pruned_total",
			Help: "Branches cut by bound",
		}, []string{"bound"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "condenser_search_duration_seconds",
			Help:    "Time to condense one concept set",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60, 600},
		}),
		clauses: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "condenser_expression_clauses",
			Help:    "Length of the condensed expressions",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
		}),
		concepts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "condenser_concept_set_size",
			Help:    "Number of concepts in the condensed concept sets",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),
	}
}

func (r *Recorder) ObserveSearch(s Search) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(s.Result).Inc()
	r.nodes.Add(float64(s.Nodes))
	r.leaves.Add(float64(s.Leaves))
	r.pruned.WithLabelValues("length").Add(float64(s.PrunedByLength))
	r.pruned.WithLabelValues("reachability").Add(float64(s.PrunedByReachability))
	r.duration.Observe(s.Duration.Seconds())
	r.concepts.Observe(float64(s.Concepts))
	if s.Result == ResultOptimal {
		r.clauses.Observe(float64(s.Clauses))
	}
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
