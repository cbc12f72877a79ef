// Package metrics holds the Prometheus instrumentation for the
// recommendation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	recommendationRequests *prometheus.CounterVec
	recommendationDuration prometheus.Histogram
	coldStartTotal         prometheus.Counter
	evaluationRuns         prometheus.Counter
	ratingTableSize        prometheus.Gauge
}

func NewCollector() *Collector {
	return &Collector{
		recommendationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recsys_recommendation_requests_total",
			Help: "Total recommendation requests by outcome",
		}, []string{"outcome"}),
		recommendationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recsys_recommendation_duration_seconds",
			Help:    "Recommendation generation latency",
			Buckets: prometheus.DefBuckets,
		}),
		coldStartTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recsys_cold_start_total",
			Help: "Recommendations served through the popularity fallback",
		}),
		evaluationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recsys_evaluation_runs_total",
			Help: "Completed evaluation runs",
		}),
		ratingTableSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "recsys_rating_table_size",
			Help: "Number of rating records in the current snapshot",
		}),
	}
}

func (c *Collector) ObserveRecommendation(outcome string, duration time.Duration, coldStart bool) {
	c.recommendationRequests.WithLabelValues(outcome).Inc()
	c.recommendationDuration.Observe(duration.Seconds())
	if coldStart {
		c.coldStartTotal.Inc()
	}
}

func (c *Collector) ObserveEvaluationRun() {
	c.evaluationRuns.Inc()
}

func (c *Collector) SetRatingTableSize(n int) {
	c.ratingTableSize.Set(float64(n))
}
