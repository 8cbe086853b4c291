// Package metrics exposes admission counters via Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts inbound events and verdicts. All methods are safe for
// concurrent use and all are no-ops on a nil receiver, so wiring metrics
// stays optional.
type Metrics struct {
	eventsTotal      *prometheus.CounterVec
	verdictsTotal    *prometheus.CounterVec
	blacklistInserts prometheus.Counter
}

// New registers the joingate collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joingate_events_total",
				Help: "Number of inbound platform events by kind.",
			},
			[]string{"kind"},
		),
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joingate_verdicts_total",
				Help: "Number of admission verdicts by decision.",
			},
			[]string{"decision"},
		),
		blacklistInserts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "joingate_blacklist_inserts_total",
				Help: "Number of automatic blacklist inserts.",
			},
		),
	}

	reg.MustRegister(m.eventsTotal, m.verdictsTotal, m.blacklistInserts)
	return m
}

// ObserveEvent records an inbound event of the given kind.
func (m *Metrics) ObserveEvent(kind string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(kind).Inc()
}

// ObserveVerdict records an admission decision.
func (m *Metrics) ObserveVerdict(approve bool) {
	if m == nil {
		return
	}
	decision := "reject"
	if approve {
		decision = "approve"
	}
	m.verdictsTotal.WithLabelValues(decision).Inc()
}

// ObserveBlacklistInsert records an automatic blacklist insert.
func (m *Metrics) ObserveBlacklistInsert() {
	if m == nil {
		return
	}
	m.blacklistInserts.Inc()
}
