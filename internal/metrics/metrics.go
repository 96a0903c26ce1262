// Package metrics holds the Prometheus instruments for the agent pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_questions_total",
			Help: "Total number of natural-language questions processed",
		},
	)

	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_calls_total",
			Help: "Backend tool calls made by the agent, by tool name",
		},
		[]string{"tool"},
	)

	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_result_classifications_total",
			Help: "Classified backend results, by category",
		},
		[]string{"category"},
	)

	routingFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_routing_failures_total",
			Help: "Tool decisions that could not be parsed or named an unknown tool",
		},
	)

	declinedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_declined_total",
			Help: "Questions the model declined to route to any tool",
		},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twin_backend_request_duration_seconds",
			Help:    "Duration of twin backend calls, by tool name",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	metricsOnce sync.Once
)

func init() {
	metricsOnce.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(questionsTotal)
		prometheus.DefaultRegisterer.MustRegister(toolCallsTotal)
		prometheus.DefaultRegisterer.MustRegister(classificationsTotal)
		prometheus.DefaultRegisterer.MustRegister(routingFailuresTotal)
		prometheus.DefaultRegisterer.MustRegister(declinedTotal)
		prometheus.DefaultRegisterer.MustRegister(backendRequestDuration)
	})
}

// ObserveQuestion counts one processed question.
func ObserveQuestion() {
	questionsTotal.Inc()
}

// ObserveToolCall counts a backend call and records its duration.
func ObserveToolCall(tool string, d time.Duration) {
	toolCallsTotal.WithLabelValues(tool).Inc()
	backendRequestDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveClassification counts a classified result by category.
func ObserveClassification(category string) {
	classificationsTotal.WithLabelValues(category).Inc()
}

// ObserveRoutingFailure counts an unparseable or invalid tool decision.
func ObserveRoutingFailure() {
	routingFailuresTotal.Inc()
}

// ObserveDeclined counts a question the model refused to route.
func ObserveDeclined() {
	declinedTotal.Inc()
}
