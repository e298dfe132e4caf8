// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "student_toolkit"

var (
	QuestionsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_generated_total",
		Help:      "Questions generated and persisted, by type and difficulty.",
	}, []string{"type", "difficulty"})

	GenerationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "question_generation_failures_total",
		Help:      "Failed generate calls, by error kind.",
	}, []string{"kind"})

	AnswersEvaluated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_evaluated_total",
		Help:      "Answers evaluated and recorded in the stats ledger, by type and result.",
	}, []string{"type", "result"})

	EvaluationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answer_evaluation_failures_total",
		Help:      "Failed check-answer calls, by error kind.",
	}, []string{"kind"})

	AIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_request_duration_seconds",
		Help:      "Latency of text generator calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"provider", "outcome"})

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the per-user rate limiter.",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		QuestionsGenerated,
		GenerationFailures,
		AnswersEvaluated,
		EvaluationFailures,
		AIRequestDuration,
		RateLimited,
	)
}

// Result labels a verdict for AnswersEvaluated.
func Result(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
