package sim

// EventListener observes every event the Simulator dispatches, after it
// has been popped from the queue but before Process is called on its
// target (spec §4.8, C9). Listeners must not mutate simulation state;
// they exist for metrics and tracing.
type EventListener interface {
	Update(ev Event, s *Simulator)
}

// CircularClockListener is ticked on a fixed interval via self-scheduling
// CIRCULAR_CLOCK_EVENTs (spec §4.8, C9), independent of any other event
// traffic — used for periodic sampling (e.g. utilization snapshots).
type CircularClockListener interface {
	Update(s *Simulator)
	Interval() float64
}

type circularClockRegistration struct {
	listener CircularClockListener
}

// EventListenerFunc adapts a plain function to EventListener.
type EventListenerFunc func(ev Event, s *Simulator)

func (f EventListenerFunc) Update(ev Event, s *Simulator) { f(ev, s) }
