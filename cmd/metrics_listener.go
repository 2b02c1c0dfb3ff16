package cmd

import (
	"github.com/prometheus/client_golang/prometheus"

	sim "github.com/cloudsim/cloudsim/sim"
)

// PrometheusEventListener observes the event stream and exports counters,
// without ever mutating simulation state (spec §4.10 "not a filter").
// It lives entirely in cmd/: the core never imports a metrics backend.
type PrometheusEventListener struct {
	eventsTotal *prometheus.CounterVec
	clockGauge  prometheus.Gauge
}

// NewPrometheusEventListener registers its metrics against reg and returns
// a listener ready to be attached via Simulator.AddEventListener.
func NewPrometheusEventListener(reg prometheus.Registerer) (*PrometheusEventListener, error) {
	l := &PrometheusEventListener{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudsim_events_total",
			Help: "Count of simulation events dispatched, by type.",
		}, []string{"event_type"}),
		clockGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cloudsim_clock_seconds",
			Help: "Current simulated clock reading.",
		}),
	}
	if err := reg.Register(l.eventsTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(l.clockGauge); err != nil {
		return nil, err
	}
	return l, nil
}

// Update implements sim.EventListener.
func (l *PrometheusEventListener) Update(ev sim.Event, s *sim.Simulator) {
	l.eventsTotal.WithLabelValues(ev.Type().String()).Inc()
	l.clockGauge.Set(s.Clock())
}
