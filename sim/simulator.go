package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// SimState is the simulator lifecycle (spec §4.8, C8).
type SimState int

const (
	SimInitialized SimState = iota
	SimRunning
	SimPaused
	SimTerminated
)

func (s SimState) String() string {
	switch s {
	case SimInitialized:
		return "INITIALIZED"
	case SimRunning:
		return "RUNNING"
	case SimPaused:
		return "PAUSED"
	case SimTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// terminationSentinel is the default SIMULATION_TERMINATE time when the
// caller never calls SetTerminationTime: effectively "run until the event
// queue drains naturally" (spec §4.8; pycloudsim uses
// np.finfo(np.float64).max for the same purpose).
const terminationSentinel = math.MaxFloat64

// lessEvent orders the event queue by (time, priority, seq) — spec §4.3
// and §9's full deterministic tie-break chain.
func lessEvent(a, b Event) bool {
	if a.Time() != b.Time() {
		return a.Time() < b.Time()
	}
	if a.Priority() != b.Priority() {
		return a.Priority() < b.Priority()
	}
	return a.Seq() < b.Seq()
}

// Simulator owns the global event queue and clock (spec §4.8, C8). It
// never interprets event payloads itself beyond the three types it
// handles directly (SIMULATION_TERMINATE, SIMULATION_PAUSE,
// CIRCULAR_CLOCK_EVENT); everything else is dispatched to its target's
// Process method.
type Simulator struct {
	queue *Heap[Event]

	clock     float64
	prevClock float64
	state     SimState

	datacenter *Datacenter

	eventListeners        []EventListener
	circularClockListeners []circularClockRegistration

	seqCounter uint64

	terminationTime    float64
	terminationTimeSet bool

	log *logrus.Entry
}

// NewSimulator builds a Simulator with the default +inf termination
// sentinel already queued (spec §4.8 "a simulation with no explicit
// termination time runs until the queue drains").
func NewSimulator(logger *logrus.Entry) *Simulator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Simulator{
		queue:           NewHeap(lessEvent),
		state:           SimInitialized,
		terminationTime: terminationSentinel,
		log:             logger.WithField("component", "simulator"),
	}
	s.queue.Push(newSimulationTerminateEvent(s, terminationSentinel))
	return s
}

func (s *Simulator) nextSeq() uint64 {
	s.seqCounter++
	return s.seqCounter
}

// Clock returns the current simulation time.
func (s *Simulator) Clock() float64 { return s.clock }

// State returns the simulator's lifecycle state.
func (s *Simulator) State() SimState { return s.state }

// Datacenter returns the datacenter this simulator drives.
func (s *Simulator) Datacenter() *Datacenter { return s.datacenter }

// SetDatacenter attaches the datacenter that SIMULATION_TERMINATE
// delegates to.
func (s *Simulator) SetDatacenter(dc *Datacenter) { s.datacenter = dc }

// Process satisfies Handler so the Simulator can be its own event
// target; the main loop special-cases every event type it actually
// targets itself, so this is never invoked in practice.
func (s *Simulator) Process(_ *Simulator, _ Event) {}

// Submit schedules ev. Submitting an event timestamped before the
// current clock is a causality violation (spec P3) and returns
// ErrInvalidInput rather than silently reordering history.
func (s *Simulator) Submit(ev Event) error {
	if ev.Time() < s.clock {
		return fmt.Errorf("%w: cannot submit %s at t=%g, clock is already at t=%g", ErrInvalidInput, ev.Type(), ev.Time(), s.clock)
	}
	s.queue.Push(ev)
	return nil
}

// SubmitVMBind is the entry point Broker uses to ask for VM placement
// (spec §4.7 C7/C6 boundary).
func (s *Simulator) SubmitVMBind(dc *Datacenter, vms []*Vm) error {
	return s.Submit(newVMBindEvent(s, s.clock, dc, vms))
}

// SubmitCloudletSubmit is the entry point Broker uses to hand a batch of
// cloudlets to a datacenter's waiting queue, scheduled at the current
// clock reading.
func (s *Simulator) SubmitCloudletSubmit(dc *Datacenter, cloudlets []*Cloudlet) error {
	return s.Submit(newCloudletSubmitEvent(s, s.clock, dc, cloudlets))
}

// SubmitCloudletSubmitAt schedules a cloudlet batch at an arbitrary
// future time t, for scenario setups that stagger submissions (outside
// the Broker's always-now submit_cloudlet_list contract, spec §4.9).
func (s *Simulator) SubmitCloudletSubmitAt(dc *Datacenter, cloudlets []*Cloudlet, t float64) error {
	return s.Submit(newCloudletSubmitEvent(s, t, dc, cloudlets))
}

// SetTerminationTime pins the SIMULATION_TERMINATE event to t, replacing
// the default +inf sentinel (spec §4.8). May be called before a run or
// while paused; t must not be earlier than the current clock. Since only
// one SIMULATION_TERMINATE is ever live, the replacement drains and
// re-pushes every other queued event.
func (s *Simulator) SetTerminationTime(t float64) error {
	if t < s.clock {
		return fmt.Errorf("%w: termination time %g is before current clock %g", ErrInvalidInput, t, s.clock)
	}
	kept := make([]Event, 0, s.queue.Len())
	for s.queue.Len() > 0 {
		ev, err := s.queue.Pop()
		if err != nil {
			break
		}
		if ev.Type() != EventSimulationTerminate {
			kept = append(kept, ev)
		}
	}
	for _, ev := range kept {
		s.queue.Push(ev)
	}
	s.terminationTime = t
	s.terminationTimeSet = true
	s.queue.Push(newSimulationTerminateEvent(s, t))
	return nil
}

// AddEventListener registers l to observe every dispatched event (spec
// §4.8, C9).
func (s *Simulator) AddEventListener(l EventListener) {
	s.eventListeners = append(s.eventListeners, l)
}

// AddCircularClockListener registers l and schedules its first tick at
// the current clock, which is t=0 before the simulation has run (spec
// §4.8, C9). This first scheduling is registration, not
// re-arming: from then on l.Update is responsible for calling
// ScheduleCircularClockTick again, or the ticking stops (spec §4.10).
func (s *Simulator) AddCircularClockListener(l CircularClockListener) {
	s.circularClockListeners = append(s.circularClockListeners, circularClockRegistration{listener: l})
	s.queue.Push(newCircularClockEvent(s, s.clock, l))
}

// ScheduleCircularClockTick lets a CircularClockListener re-arm itself
// from within its own Update (spec §4.10: "listeners are expected to
// re-arm themselves... otherwise the ticking stops"). Grounded on
// pycloudsim's circular_clock_listener.py, where update(simulator) is an
// abstract hook a subclass overrides to reschedule itself — the engine
// never re-pushes a tick on the listener's behalf.
func (s *Simulator) ScheduleCircularClockTick(l CircularClockListener, t float64) error {
	return s.Submit(newCircularClockEvent(s, t, l))
}

// RunUntilPauseOrTerminate drains the event queue, advancing the clock
// monotonically, until a SIMULATION_PAUSE or SIMULATION_TERMINATE event
// is processed or the queue empties (spec §4.8). Every popped event is
// first fanned out to registered EventListeners, then dispatched.
func (s *Simulator) RunUntilPauseOrTerminate() {
	if s.state == SimTerminated {
		return
	}
	s.state = SimRunning
	for s.queue.Len() > 0 {
		ev, err := s.queue.Pop()
		if err != nil {
			break
		}
		if ev.Time() < s.clock {
			panic(fmt.Sprintf("cloudsim: causality violation: event %s scheduled at t=%g but clock already passed t=%g", ev.Type(), ev.Time(), s.clock))
		}
		s.prevClock = s.clock
		s.clock = ev.Time()

		for _, l := range s.eventListeners {
			l.Update(ev, s)
		}

		switch e := ev.(type) {
		case *SimulationTerminateEvent:
			if s.datacenter != nil {
				s.datacenter.ProcessSimulationTerminate(s)
			}
			s.state = SimTerminated
			if !s.terminationTimeSet {
				s.clock = s.prevClock
			}
			s.log.WithField("time", s.clock).Info("simulation terminated")
			return
		case *SimulationPauseEvent:
			s.state = SimPaused
			s.log.WithField("time", s.clock).Info("simulation paused")
			return
		case *CircularClockEvent:
			// The engine does not implicitly repeat a circular clock tick
			// (spec §4.10, design note §9): Listener.Update must call
			// ScheduleCircularClockTick itself to keep ticking.
			e.Listener.Update(s)
		default:
			if ev.Target() != nil {
				ev.Target().Process(s, ev)
			}
		}
	}
	s.state = SimTerminated
}
