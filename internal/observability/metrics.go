package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for tool calls, completion calls and batches.
// All methods are safe on a nil receiver.
type Metrics struct {
	toolCalls          *prometheus.CounterVec
	toolDuration       *prometheus.HistogramVec
	completions        *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	batches            *prometheus.CounterVec
	answers            prometheus.Counter
}

// MustNewMetrics constructs Metrics against reg. Tests should pass a fresh
// prometheus.NewRegistry(). Registration errors panic, like promauto.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizagent",
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Capability tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quizagent",
			Subsystem: "tools",
			Name:      "duration_seconds",
			Help:      "Time spent inside capability tools.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizagent",
			Subsystem: "llm",
			Name:      "completions_total",
			Help:      "Completion service calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quizagent",
			Subsystem: "llm",
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion service calls.",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 20, 45},
		}, []string{"provider"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizagent",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Batch runs by outcome.",
		}, []string{"outcome"}),
		answers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizagent",
			Subsystem: "batch",
			Name:      "answers_total",
			Help:      "Answers produced across all batches.",
		}),
	}
	reg.MustRegister(m.toolCalls, m.toolDuration, m.completions, m.completionDuration, m.batches, m.answers)
	return m
}

// ObserveTool records one tool invocation.
func (m *Metrics) ObserveTool(tool string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome(failed)).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveCompletion records one completion call.
func (m *Metrics) ObserveCompletion(provider string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(provider, outcome(failed)).Inc()
	m.completionDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveBatch records a finished batch and the number of answers it produced.
func (m *Metrics) ObserveBatch(failed bool, answers int) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome(failed)).Inc()
	m.answers.Add(float64(answers))
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
