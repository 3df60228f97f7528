// Package metrics holds the Prometheus collectors of the generation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the pipeline collectors
type Metrics struct {
	GenerationTotal    *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	CompletionAttempts *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GenerationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "culina_generation_total",
			Help: "Recipe generation runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "culina_generation_stage_duration_seconds",
			Help:    "Time spent in each generation stage.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		CompletionAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "culina_completion_attempts_total",
			Help: "Calls to the completion gateway by result.",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "culina_http_requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
	}
}

// ObserveStage records how long a stage took since start
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// CountGeneration increments the run counter for outcome
func (m *Metrics) CountGeneration(outcome string) {
	if m == nil {
		return
	}
	m.GenerationTotal.WithLabelValues(outcome).Inc()
}

// CountAttempt increments the completion attempt counter for result
func (m *Metrics) CountAttempt(result string) {
	if m == nil {
		return
	}
	m.CompletionAttempts.WithLabelValues(result).Inc()
}

// CountRequest increments the HTTP request counter
func (m *Metrics) CountRequest(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}
