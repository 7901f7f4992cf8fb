package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	errx "github.com/geoassist/server/internal/core/error"
)

var (
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoassist_translations_total",
			Help: "Total number of question-to-query translations by outcome.",
		},
		[]string{"outcome"},
	)

	translationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoassist_translation_duration_seconds",
			Help:    "Latency of the language-model translation round trip.",
			Buckets: prometheus.DefBuckets,
		},
	)

	featureQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoassist_feature_queries_total",
			Help: "Total number of feature-service queries by outcome.",
		},
		[]string{"outcome"},
	)

	featureQueryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoassist_feature_query_duration_seconds",
			Help:    "Latency of feature-service queries.",
			Buckets: prometheus.DefBuckets,
		},
	)

	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoassist_questions_total",
			Help: "User questions processed by the session controller, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		translationsTotal,
		translationDurationSeconds,
		featureQueriesTotal,
		featureQueryDurationSeconds,
		questionsTotal,
	)
}

// Outcome maps an error to a metric label: "success" for nil, otherwise the
// failure kind.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(errx.KindOf(err))
}

// ObserveTranslation records one translation round trip.
func ObserveTranslation(start time.Time, err error) {
	translationsTotal.WithLabelValues(Outcome(err)).Inc()
	translationDurationSeconds.Observe(time.Since(start).Seconds())
}

// ObserveFeatureQuery records one feature-service query.
func ObserveFeatureQuery(start time.Time, err error) {
	featureQueriesTotal.WithLabelValues(Outcome(err)).Inc()
	featureQueryDurationSeconds.Observe(time.Since(start).Seconds())
}

// ObserveQuestion records the terminal state of one user question.
func ObserveQuestion(result string) {
	questionsTotal.WithLabelValues(result).Inc()
}
