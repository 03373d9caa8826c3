package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/api/chargers", 200, 15*time.Millisecond)
	c.RecordRequest("GET", "/api/chargers", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/api/chargers", 500, time.Millisecond)

	got := counterValue(t, reg, "voltstart_http_requests_total", map[string]string{"route": "/api/chargers", "status": "200"})
	if got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	got = counterValue(t, reg, "voltstart_http_requests_total", map[string]string{"status": "500"})
	if got != 1 {
		t.Errorf("500 count = %v, want 1", got)
	}
}

func TestCollector_DomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOTPIssued("sms")
	c.RecordOTPVerification(true)
	c.RecordOTPVerification(false)
	c.RecordOTPVerification(false)
	c.RecordTagRegistration(false)

	if v := counterValue(t, reg, "voltstart_otp_issued_total", map[string]string{"channel": "sms"}); v != 1 {
		t.Errorf("otp issued = %v", v)
	}
	if v := counterValue(t, reg, "voltstart_otp_verifications_total", map[string]string{"result": "failure"}); v != 2 {
		t.Errorf("otp failures = %v", v)
	}
	if v := counterValue(t, reg, "voltstart_tag_registrations_total", map[string]string{"result": "failure"}); v != 1 {
		t.Errorf("tag failures = %v", v)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordOTPIssued("email")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `voltstart_otp_issued_total{channel="email"} 1`) {
		t.Errorf("metrics body missing counter:\n%s", body)
	}
}
