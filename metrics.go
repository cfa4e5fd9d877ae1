package authkit

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus instrumentation bundle for the authorization
// subsystem. All record methods are safe on a nil receiver, so components can
// run unmetered.
type Metrics struct {
	gateDecisions      *prometheus.CounterVec
	signInOutcomes     *prometheus.CounterVec
	resolutions        *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	staleDrops         prometheus.Counter
	crossTenantDenials prometheus.Counter
}

// NewMetrics creates an unregistered metrics bundle. Call Register to attach
// it to a Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "authkit",
				Subsystem: "gate",
				Name:      "decisions_total",
				Help:      "Access gate decisions by outcome",
			},
			[]string{"decision"},
		),
		signInOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "authkit",
				Subsystem: "auth",
				Name:      "sign_in_total",
				Help:      "Sign-in attempts by outcome",
			},
			[]string{"outcome"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "authkit",
				Subsystem: "session",
				Name:      "profile_resolutions_total",
				Help:      "Profile resolutions by outcome",
			},
			[]string{"outcome"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "authkit",
				Subsystem: "session",
				Name:      "profile_resolution_seconds",
				Help:      "Duration of profile resolutions",
				Buckets:   prometheus.DefBuckets,
			},
		),
		staleDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "authkit",
				Subsystem: "session",
				Name:      "stale_resolutions_dropped_total",
				Help:      "Profile resolutions discarded because a newer session superseded them",
			},
		),
		crossTenantDenials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "authkit",
				Subsystem: "tenant",
				Name:      "cross_tenant_denials_total",
				Help:      "Mutations rejected for targeting a row outside the actor's tenant",
			},
		),
	}
}

// Register attaches all collectors to the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.gateDecisions,
		m.signInOutcomes,
		m.resolutions,
		m.resolutionDuration,
		m.staleDrops,
		m.crossTenantDenials,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeDecision(d Decision) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(d.String()).Inc()
}

func (m *Metrics) observeSignIn(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.signInOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeResolution(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrProfileNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	m.resolutionDuration.Observe(d.Seconds())
}

func (m *Metrics) staleResultDropped() {
	if m == nil {
		return
	}
	m.staleDrops.Inc()
}

func (m *Metrics) crossTenantDenied() {
	if m == nil {
		return
	}
	m.crossTenantDenials.Inc()
}
