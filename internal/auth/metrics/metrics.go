package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the admin guard.
type Metrics struct {
	// Login attempts by outcome: "success", "rejected", "error"
	LoginAttempts *prometheus.CounterVec

	Logouts prometheus.Counter

	// Mutations refused because the session was not admin
	Denied prometheus.Counter
}

// New registers the auth metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baias_auth_login_attempts_total",
			Help: "Admin login attempts by outcome",
		}, []string{"outcome"}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "baias_auth_logouts_total",
			Help: "Admin logouts",
		}),
		Denied: f.NewCounter(prometheus.CounterOpts{
			Name: "baias_auth_denied_total",
			Help: "Requests refused because the session is not admin",
		}),
	}
}

// IncrementLogin records a login attempt.
func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

// IncrementLogout records a logout.
func (m *Metrics) IncrementLogout() {
	if m != nil {
		m.Logouts.Inc()
	}
}

// IncrementDenied records a refused admin-only request.
func (m *Metrics) IncrementDenied() {
	if m != nil {
		m.Denied.Inc()
	}
}
