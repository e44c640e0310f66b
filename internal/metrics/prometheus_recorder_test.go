package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveGeneration(150*time.Millisecond, OutcomeSuccess)
	pr.ObserveGeneration(10*time.Millisecond, OutcomeTemplateMissing)
	pr.IncFieldState("{CourseName}", "resolved")
	pr.ObserveDocumentBytes(12000)
	pr.IncUnresolved(2)
	pr.IncUnresolved(0)
	pr.IncEventPublish("nats", false)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.InDelta(t, 1, counterValue(mfs, "syllabusbuilder_generations_total", "outcome", "success"), 0)
	require.InDelta(t, 1, counterValue(mfs, "syllabusbuilder_field_states_total", "token", "{CourseName}"), 0)
	require.InDelta(t, 2, counterValue(mfs, "syllabusbuilder_unresolved_tokens_total", "", ""), 0)
	require.InDelta(t, 1, counterValue(mfs, "syllabusbuilder_event_publishes_total", "result", "failed"), 0)
}

// counterValue returns the counter sample of family name carrying label=value
// (any sample when label is empty).
func counterValue(mfs []*dto.MetricFamily, name, label, value string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveGeneration(time.Second, OutcomeFailed)
	pr.IncFieldState("x", "y")
	pr.IncEventPublish("history", true)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).ObserveGeneration(time.Millisecond, OutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "syllabusbuilder_generations_total")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveGeneration(time.Second, OutcomeSuccess)
	r.IncFieldState("t", "s")
	r.ObserveDocumentBytes(1)
	r.IncUnresolved(1)
	r.IncEventPublish("nats", true)
}
