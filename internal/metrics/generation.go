package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation backend Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surveyd",
			Name:      "generation_requests_total",
			Help:      "Total number of text generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "surveyd",
			Name:      "generation_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider", "model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surveyd",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surveyd",
			Name:      "generation_errors_total",
			Help:      "Total text generation errors",
		},
		[]string{"provider", "model", "error_type"},
	)
)

// Survey pipeline Prometheus metrics.
var (
	SurveysProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surveyd",
			Name:      "surveys_processed_total",
			Help:      "Total survey submissions by outcome",
		},
		[]string{"outcome"}, // "success" / "failure"
	)

	PipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surveyd",
			Name:      "pipeline_failures_total",
			Help:      "Survey pipeline failures by stage",
		},
		[]string{"stage"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "surveyd",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Survey pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers generation and pipeline metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	prometheus.MustRegister(GenerationErrorsTotal)
	prometheus.MustRegister(SurveysProcessedTotal)
	prometheus.MustRegister(PipelineFailuresTotal)
	prometheus.MustRegister(PipelineStageDuration)
	serviceMetricsRegistered = true
}
