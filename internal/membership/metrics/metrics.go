// Package metrics exposes Prometheus counters for the membership flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "membership"

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing, so services can be constructed without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	logins      *prometheus.CounterVec
	otpIssued   *prometheus.CounterVec
	otpVerified *prometheus.CounterVec
	invitations *prometheus.CounterVec
	mailSent    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "One-time codes issued by purpose.",
		}, []string{"purpose"}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "One-time code verifications by purpose and result.",
		}, []string{"purpose", "result"}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_total",
			Help:      "Invitation lifecycle events.",
		}, []string{"event"}),
		mailSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_deliveries_total",
			Help:      "Outbound mail attempts by kind and result.",
		}, []string{"kind", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.otpIssued,
		m.otpVerified,
		m.invitations,
		m.mailSent,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OTPIssued(purpose string) {
	if m == nil {
		return
	}
	m.otpIssued.WithLabelValues(purpose).Inc()
}

func (m *Metrics) OTPVerified(purpose, result string) {
	if m == nil {
		return
	}
	m.otpVerified.WithLabelValues(purpose, result).Inc()
}

// Invitation counts an invitation event (created, verified, accepted,
// revoked, expired).
func (m *Metrics) Invitation(event string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(event).Inc()
}

// Invitations counts n invitations hit by the same event, e.g. the ones a
// new invitation superseded.
func (m *Metrics) Invitations(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.invitations.WithLabelValues(event).Add(float64(n))
}

func (m *Metrics) Mail(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mailSent.WithLabelValues(kind, result).Inc()
}
