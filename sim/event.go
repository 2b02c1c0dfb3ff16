package sim

// EventType enumerates the kinds of events the simulator dispatches.
// Canonical priority assignments (spec §4.3) — lower wins ties at equal
// scheduled time.
type EventType int

const (
	EventSimulationTerminate EventType = iota
	EventSimulationPause
	EventCircularClock
	EventHostAdd
	EventHostRemove
	EventHostPoweron
	EventHostPoweroff
	EventVMFail
	EventVMDestroy
	EventVMBind
	EventVMShutdown
	EventVMBootup
	EventCloudletFail
	EventCloudletFinish
	EventCloudletBind
	EventCloudletSubmit
)

// eventPriority holds the exact numeric spreads from spec §4.3. Smaller
// wins. The spreads (not just relative order) are kept because they are
// part of the documented contract external code may rely on.
var eventPriority = map[EventType]int{
	EventSimulationTerminate: 0,
	EventSimulationPause:     1,
	EventCircularClock:       100,
	EventHostAdd:             200,
	EventHostRemove:          201,
	EventHostPoweron:         202,
	EventHostPoweroff:        203,
	EventVMFail:              300,
	EventVMDestroy:           301,
	EventVMBind:              302,
	EventVMShutdown:          303,
	EventVMBootup:            304,
	EventCloudletFail:        400,
	EventCloudletFinish:      401,
	EventCloudletBind:        402,
	EventCloudletSubmit:      403,
}

func (t EventType) Priority() int { return eventPriority[t] }

func (t EventType) String() string {
	switch t {
	case EventSimulationTerminate:
		return "SIMULATION_TERMINATE"
	case EventSimulationPause:
		return "SIMULATION_PAUSE"
	case EventCircularClock:
		return "CIRCULAR_CLOCK_EVENT"
	case EventHostAdd:
		return "HOST_ADD"
	case EventHostRemove:
		return "HOST_REMOVE"
	case EventHostPoweron:
		return "HOST_POWERON"
	case EventHostPoweroff:
		return "HOST_POWEROFF"
	case EventVMFail:
		return "VM_FAIL"
	case EventVMDestroy:
		return "VM_DESTROY"
	case EventVMBind:
		return "VM_BIND"
	case EventVMShutdown:
		return "VM_SHUTDOWN"
	case EventVMBootup:
		return "VM_BOOTUP"
	case EventCloudletFail:
		return "CLOUDLET_FAIL"
	case EventCloudletFinish:
		return "CLOUDLET_FINISH"
	case EventCloudletBind:
		return "CLOUDLET_BIND"
	case EventCloudletSubmit:
		return "CLOUDLET_SUBMIT"
	default:
		return "UNKNOWN"
	}
}

// Handler is the capability any event target implements (spec §4.3/§6):
// "any target of an event implements process(event)".
type Handler interface {
	Process(sim *Simulator, ev Event)
}

// Event is an immutable record: optional source, required target, a
// type, a scheduled time, and a monotonic sequence number used only to
// break residual ties deterministically (spec §4.3/§9 — the priority
// table settles ties at equal time; seq settles the rest, FIFO by
// submission order).
type Event interface {
	Time() float64
	Type() EventType
	Priority() int
	Seq() uint64
	Source() Handler
	Target() Handler
}

type baseEvent struct {
	time   float64
	seq    uint64
	evType EventType
	source Handler
	target Handler
}

func (e baseEvent) Time() float64    { return e.time }
func (e baseEvent) Type() EventType  { return e.evType }
func (e baseEvent) Priority() int    { return e.evType.Priority() }
func (e baseEvent) Seq() uint64      { return e.seq }
func (e baseEvent) Source() Handler  { return e.source }
func (e baseEvent) Target() Handler  { return e.target }

func newBaseEvent(t float64, seq uint64, evType EventType, source, target Handler) baseEvent {
	return baseEvent{time: t, seq: seq, evType: evType, source: source, target: target}
}

// --- Concrete event payloads -------------------------------------------------

// VMBindEvent asks the datacenter to place a batch of VM descriptors
// atomically (spec §4.7 VM_BIND).
type VMBindEvent struct {
	baseEvent
	VMs []*Vm
}

// VMBootupEvent signals a bound VM has finished its startup delay and is
// ready to run.
type VMBootupEvent struct {
	baseEvent
	VM *VmRunning
}

// VMShutdownEvent asks the datacenter to begin graceful (or forced)
// shutdown of a running VM.
type VMShutdownEvent struct {
	baseEvent
	VM *VmRunning
}

// VMDestroyEvent asks the datacenter to detach a VM from its host after
// its shutdown delay has elapsed.
type VMDestroyEvent struct {
	baseEvent
	VM *VmRunning
}

// VMFailEvent is a reserved stub (spec §4.7: "no-op stubs").
type VMFailEvent struct {
	baseEvent
	VM *VmRunning
}

// CloudletSubmitEvent asks the datacenter to enqueue a batch of cloudlet
// descriptors onto the waiting queue.
type CloudletSubmitEvent struct {
	baseEvent
	Cloudlets []*Cloudlet
}

// CloudletBindEvent asks the datacenter to drain the waiting queue as far
// as current VM capacity allows.
type CloudletBindEvent struct {
	baseEvent
}

// CloudletFinishEvent signals a running cloudlet has completed its
// execution time on its VM.
type CloudletFinishEvent struct {
	baseEvent
	Cloudlet *CloudletRunning
}

// CloudletFailEvent is a reserved stub (spec §4.7: "no-op stubs").
type CloudletFailEvent struct {
	baseEvent
	Cloudlet *CloudletRunning
}

// HostAddEvent, HostRemoveEvent, HostPoweronEvent, HostPoweroffEvent are
// reserved stubs (spec §4.7).
type HostAddEvent struct {
	baseEvent
	Host *Host
}

type HostRemoveEvent struct {
	baseEvent
	Host *Host
}

type HostPoweronEvent struct {
	baseEvent
	Host *Host
}

type HostPoweroffEvent struct {
	baseEvent
	Host *Host
}

// SimulationTerminateEvent ends the simulation loop. Always targets the
// Simulator itself.
type SimulationTerminateEvent struct {
	baseEvent
}

// SimulationPauseEvent cleanly exits the loop with state PAUSED. Always
// targets the Simulator itself.
type SimulationPauseEvent struct {
	baseEvent
}

// CircularClockEvent fires one registered CircularClockListener's Update.
// The engine does not reschedule it; Update must call
// Simulator.ScheduleCircularClockTick itself to keep ticking (spec
// §4.10). Always targets the Simulator itself.
type CircularClockEvent struct {
	baseEvent
	Listener CircularClockListener
}

// --- Constructors ------------------------------------------------------
//
// All concrete events are minted through the Simulator so that the
// monotonic seq counter stays centralized (spec §9 residual tie-break).

func newVMBindEvent(s *Simulator, t float64, dc *Datacenter, vms []*Vm) *VMBindEvent {
	return &VMBindEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventVMBind, nil, dc), VMs: vms}
}

func newVMBootupEvent(s *Simulator, t float64, dc *Datacenter, vm *VmRunning) *VMBootupEvent {
	return &VMBootupEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventVMBootup, dc, dc), VM: vm}
}

func newVMShutdownEvent(s *Simulator, t float64, dc *Datacenter, vm *VmRunning) *VMShutdownEvent {
	return &VMShutdownEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventVMShutdown, dc, dc), VM: vm}
}

func newVMDestroyEvent(s *Simulator, t float64, dc *Datacenter, vm *VmRunning) *VMDestroyEvent {
	return &VMDestroyEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventVMDestroy, dc, dc), VM: vm}
}

func newCloudletSubmitEvent(s *Simulator, t float64, dc *Datacenter, cloudlets []*Cloudlet) *CloudletSubmitEvent {
	return &CloudletSubmitEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventCloudletSubmit, nil, dc), Cloudlets: cloudlets}
}

func newCloudletBindEvent(s *Simulator, t float64, dc *Datacenter) *CloudletBindEvent {
	return &CloudletBindEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventCloudletBind, dc, dc)}
}

func newCloudletFinishEvent(s *Simulator, t float64, dc *Datacenter, c *CloudletRunning) *CloudletFinishEvent {
	return &CloudletFinishEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventCloudletFinish, dc, dc), Cloudlet: c}
}

func newSimulationTerminateEvent(s *Simulator, t float64) *SimulationTerminateEvent {
	return &SimulationTerminateEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventSimulationTerminate, s, s)}
}

func newSimulationPauseEvent(s *Simulator, t float64) *SimulationPauseEvent {
	return &SimulationPauseEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventSimulationPause, s, s)}
}

func newCircularClockEvent(s *Simulator, t float64, l CircularClockListener) *CircularClockEvent {
	return &CircularClockEvent{baseEvent: newBaseEvent(t, s.nextSeq(), EventCircularClock, s, s), Listener: l}
}
