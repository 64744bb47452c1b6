// Package metrics holds the Prometheus collectors shared by the session guard,
// the link manager and the HTTP server. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "booking"

type Metrics struct {
	sessionTransitions *prometheus.CounterVec
	loginAttempts      *prometheus.CounterVec
	linksGenerated     prometheus.Counter
	linkResolutions    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by target phase.",
		}, []string{"phase"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		linksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "generated_total",
			Help:      "Link tokens minted.",
		}),
		linkResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "resolutions_total",
			Help:      "Link token resolutions by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.sessionTransitions, m.loginAttempts, m.linksGenerated, m.linkResolutions)
	return m
}

func (m *Metrics) SessionTransition(phase string) {
	if m == nil {
		return
	}
	m.sessionTransitions.WithLabelValues(phase).Inc()
}

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LinkGenerated() {
	if m == nil {
		return
	}
	m.linksGenerated.Inc()
}

// LinkResolved records a resolution result: "ok", "malformed" or "not_found".
func (m *Metrics) LinkResolved(result string) {
	if m == nil {
		return
	}
	m.linkResolutions.WithLabelValues(result).Inc()
}
