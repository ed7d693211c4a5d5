package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	DocumentsScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emfd_documents_scored_total",
			Help: "Documents scored, by dictionary and mode.",
		},
		[]string{"dictionary", "mode"},
	)
	DocumentsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emfd_documents_failed_total",
			Help: "Documents that produced no scores, by reason.",
		},
		[]string{"reason"},
	)
	EntitiesExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emfd_entities_extracted_total",
			Help: "Entity rows emitted by role extraction.",
		},
	)
	Tasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emfd_worker_tasks_total",
			Help: "Queue tasks handled by the worker, by outcome.",
		},
		[]string{"outcome"},
	)
	ScoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emfd_score_duration_seconds",
			Help:    "Time spent annotating and scoring one document.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

// Failure reasons.
const (
	ReasonEmpty    = "empty"
	ReasonAnnotate = "annotate"
)

// Task outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
)

func init() {
	prometheus.MustRegister(DocumentsScored, DocumentsFailed, EntitiesExtracted, Tasks, ScoreDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
