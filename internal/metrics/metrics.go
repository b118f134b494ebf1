package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	InvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteops_invalidations_total",
			Help: "Total invalidation workflows by outcome",
		},
		[]string{"outcome"}, // completed|submitted|timed_out|...
	)

	InvalidationPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siteops_invalidation_polls_total",
			Help: "Total invalidation status queries",
		},
	)

	InvalidationPollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siteops_invalidation_poll_errors_total",
			Help: "Status queries that failed and were retried on the next cycle",
		},
	)

	InvalidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siteops_invalidation_duration_seconds",
			Help:    "Duration from submission until the workflow finished",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)
)

func init() {
	prometheus.MustRegister(InvalidationsTotal)
	prometheus.MustRegister(InvalidationPollsTotal)
	prometheus.MustRegister(InvalidationPollErrorsTotal)
	prometheus.MustRegister(InvalidationDuration)
}

// RecordInvalidation はワークフロー1回分の結果を記録します
func RecordInvalidation(outcome string, elapsed time.Duration, polls, pollErrors int) {
	InvalidationsTotal.WithLabelValues(outcome).Inc()
	InvalidationPollsTotal.Add(float64(polls))
	InvalidationPollErrorsTotal.Add(float64(pollErrors))
	InvalidationDuration.Observe(elapsed.Seconds())
}

// WriteTextfile はnode_exporterのtextfile collector向けにメトリクスを書き出します
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
