package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "syllabusbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	duration       *prom.HistogramVec
	outcomes       *prom.CounterVec
	fieldStates    *prom.CounterVec
	documentBytes  prom.Histogram
	unresolved     prom.Counter
	eventPublishes *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.duration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of syllabus generation requests",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by outcome",
		}, []string{"outcome"})
		pr.fieldStates = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "field_states_total",
			Help:      "Final state of template tokens after assembly",
		}, []string{"token", "state"})
		pr.documentBytes = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of generated documents",
			Buckets:   prom.ExponentialBuckets(4096, 2, 10),
		})
		pr.unresolved = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_tokens_total",
			Help:      "Tokens left unresolved in generated documents",
		})
		pr.eventPublishes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "event_publishes_total",
			Help:      "Generation event deliveries by sink and result",
		}, []string{"sink", "result"})
		reg.MustRegister(pr.duration, pr.outcomes, pr.fieldStates, pr.documentBytes, pr.unresolved, pr.eventPublishes)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveGeneration(d time.Duration, outcome Outcome) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(string(outcome)).Observe(d.Seconds())
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncFieldState(token, state string) {
	if p == nil || p.fieldStates == nil {
		return
	}
	p.fieldStates.WithLabelValues(token, state).Inc()
}

func (p *PrometheusRecorder) ObserveDocumentBytes(n int) {
	if p == nil || p.documentBytes == nil {
		return
	}
	p.documentBytes.Observe(float64(n))
}

func (p *PrometheusRecorder) IncUnresolved(n int) {
	if p == nil || p.unresolved == nil || n <= 0 {
		return
	}
	p.unresolved.Add(float64(n))
}

func (p *PrometheusRecorder) IncEventPublish(sink string, success bool) {
	if p == nil || p.eventPublishes == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.eventPublishes.WithLabelValues(sink, res).Inc()
}
