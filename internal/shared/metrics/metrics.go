package metrics

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tire"

// Metrics holds the Prometheus collectors reporting analysis activity.
type Metrics struct {
	started   prometheus.Counter
	completed prometheus.Counter
	degraded  prometheus.Counter
	failed    prometheus.Counter
	duration  prometheus.Histogram

	branchOutcomes  *prometheus.CounterVec
	branchDuration  *prometheus.HistogramVec
	scorerFallbacks *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultRegistry *prometheus.Registry
	defaultMetrics  *Metrics
)

// Default returns the process-wide metrics registered on the registry served by Handler.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultRegistry = prometheus.NewRegistry()
		defaultRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		defaultMetrics = MustNewMetrics(defaultRegistry)
	})
	return defaultMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Registration errors panic, as with promauto.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "analysis", Name: "started_total",
			Help: "Total analyses started.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "analysis", Name: "completed_total",
			Help: "Total analyses completed.",
		}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "analysis", Name: "degraded_total",
			Help: "Completed analyses where at least one enrichment branch fell back.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "analysis", Name: "failed_total",
			Help: "Analyses rejected before scoring (validation, detection, vision).",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "analysis", Name: "duration_seconds",
			Help:    "End-to-end analysis duration.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		branchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "enrichment", Name: "branch_outcomes_total",
			Help: "Settled enrichment branches by outcome.",
		}, []string{"branch", "outcome"}),
		branchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "enrichment", Name: "branch_duration_seconds",
			Help:    "Time for an enrichment branch to settle.",
			Buckets: prometheus.DefBuckets,
		}, []string{"branch"}),
		scorerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scoring", Name: "fallbacks_total",
			Help: "Scores replaced by their fixed fallback value.",
		}, []string{"component"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.started, m.completed, m.degraded, m.failed, m.duration,
		m.branchOutcomes, m.branchDuration, m.scorerFallbacks)
	return m
}

func (m *Metrics) AnalysisStarted()   { m.started.Inc() }
func (m *Metrics) AnalysisCompleted() { m.completed.Inc() }
func (m *Metrics) AnalysisDegraded()  { m.degraded.Inc() }
func (m *Metrics) AnalysisFailed()    { m.failed.Inc() }

// ObserveAnalysis records an end-to-end analysis duration.
func (m *Metrics) ObserveAnalysis(d time.Duration) {
	m.duration.Observe(max(d, 0).Seconds())
}

// BranchSettled records the outcome ("ok" or "fallback") and duration of an enrichment branch.
func (m *Metrics) BranchSettled(branch, outcome string, d time.Duration) {
	m.branchOutcomes.WithLabelValues(branch, outcome).Inc()
	m.branchDuration.WithLabelValues(branch).Observe(max(d, 0).Seconds())
}

// ScorerFallback records a scorer that returned its fallback value.
func (m *Metrics) ScorerFallback(component string) {
	m.scorerFallbacks.WithLabelValues(component).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	Default()
	return gin.WrapH(promhttp.HandlerFor(defaultRegistry, promhttp.HandlerOpts{}))
}
