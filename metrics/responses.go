// Package metrics exports envelope counts to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/surazdott/api-response/http/responder"
)

// ResponseMetrics counts written envelopes by kind and status.
type ResponseMetrics struct {
	responses *prometheus.CounterVec
}

// NewResponseMetrics registers the response counter on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewResponseMetrics(reg prometheus.Registerer, namespace string) *ResponseMetrics {
	if reg == nil {
		return &ResponseMetrics{}
	}
	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_responses_total",
		Help:      "Envelopes written, by kind and HTTP status.",
	}, []string{"kind", "status"})
	reg.MustRegister(responses)
	return &ResponseMetrics{responses: responses}
}

// Observe implements responder.Observer.
func (m *ResponseMetrics) Observe(kind responder.Kind, status int) {
	if m == nil || m.responses == nil {
		return
	}
	m.responses.WithLabelValues(normalizeLabel(string(kind)), strconv.Itoa(status)).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

var _ responder.Observer = (*ResponseMetrics)(nil)
