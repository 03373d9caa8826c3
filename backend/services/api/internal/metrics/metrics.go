package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the HTTP layer and services.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordOTPIssued(channel string)
	RecordOTPVerification(success bool)
	RecordTagRegistration(success bool)
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	otpIssued       *prometheus.CounterVec
	otpVerified     *prometheus.CounterVec
	tagRegistered   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltstart_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voltstart_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltstart_otp_issued_total",
			Help: "One-time codes issued by delivery channel.",
		}, []string{"channel"}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltstart_otp_verifications_total",
			Help: "One-time code verification attempts by result.",
		}, []string{"result"}),
		tagRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltstart_tag_registrations_total",
			Help: "Authorization tag upserts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.otpIssued,
		c.otpVerified,
		c.tagRegistered,
	)
	return c
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOTPIssued counts an issued code.
func (c *Collector) RecordOTPIssued(channel string) {
	c.otpIssued.WithLabelValues(channel).Inc()
}

// RecordOTPVerification counts a verification attempt.
func (c *Collector) RecordOTPVerification(success bool) {
	c.otpVerified.WithLabelValues(result(success)).Inc()
}

// RecordTagRegistration counts a tag upsert.
func (c *Collector) RecordTagRegistration(success bool) {
	c.tagRegistered.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordRequest(string, string, int, time.Duration) {}
func (NopRecorder) RecordOTPIssued(string)                           {}
func (NopRecorder) RecordOTPVerification(bool)                       {}
func (NopRecorder) RecordTagRegistration(bool)                       {}
