package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/surazdott/api-response/http/responder"
)

func TestResponseMetricsCountsByKindAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResponseMetrics(reg, "")

	m.Observe(responder.KindValidation, http.StatusUnprocessableEntity)
	m.Observe(responder.KindValidation, http.StatusUnprocessableEntity)
	m.Observe(responder.KindSuccess, http.StatusOK)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "api_responses_total", "validation", "422"); err != nil {
		t.Fatalf("fetch validation: %v", err)
	} else if got != 2 {
		t.Fatalf("expected validation=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "api_responses_total", "success", "200"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
}

func TestResponseMetricsAsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResponseMetrics(reg, "shop")
	factory := responder.NewResponderFactory(responder.WithObserver(m))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	factory.FromRequest(httptest.NewRecorder(), req).NotFound("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "shop_api_responses_total", "not_found", "404"); err != nil {
		t.Fatalf("fetch not_found: %v", err)
	} else if got != 1 {
		t.Fatalf("expected not_found=1, got %f", got)
	}
}

func TestResponseMetricsNilSafe(t *testing.T) {
	var m *ResponseMetrics
	m.Observe(responder.KindSuccess, http.StatusOK)

	NewResponseMetrics(nil, "").Observe(responder.KindSuccess, http.StatusOK)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewResponseMetrics(reg, "").Observe(responder.KindCreated, http.StatusCreated)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `api_responses_total{kind="created",status="201"} 1`) {
		t.Fatalf("unexpected metrics output: %s", body)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, kind, status string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelValue(metric, "kind") == kind && labelValue(metric, "status") == status {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q missing kind=%s status=%s", name, kind, status)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
