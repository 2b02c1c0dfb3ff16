package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickRecorder is a CircularClockListener that records every tick time
// and re-arms itself indefinitely by calling ScheduleCircularClockTick
// from its own Update — the Simulator never reschedules on its behalf.
type tickRecorder struct {
	interval float64
	ticks    []float64
}

func (r *tickRecorder) Interval() float64 { return r.interval }
func (r *tickRecorder) Update(s *Simulator) {
	r.ticks = append(r.ticks, s.Clock())
	_ = s.ScheduleCircularClockTick(r, s.Clock()+r.interval)
}

// TestScenarioS5 mirrors spec §8 S5: a CircularClockListener(interval=60)
// with termination at t=200 fires at 0, 60, 120, 180 and no later.
func TestScenarioS5(t *testing.T) {
	s := NewSimulator(nil)
	rec := &tickRecorder{interval: 60}
	s.AddCircularClockListener(rec)
	require.NoError(t, s.SetTerminationTime(200))

	s.RunUntilPauseOrTerminate()

	assert.Equal(t, []float64{0, 60, 120, 180}, rec.ticks)
	assert.Equal(t, SimTerminated, s.State())
}

// TestScenarioS6 mirrors spec §8 S6: no termination time, no events ->
// the sentinel TERMINATE pops, global clock rewinds to 0, state
// TERMINATED.
func TestScenarioS6(t *testing.T) {
	s := NewSimulator(nil)
	s.RunUntilPauseOrTerminate()

	assert.Equal(t, SimTerminated, s.State())
	assert.Equal(t, 0.0, s.Clock())
}

// TestSimulator_EventOrderMonotonicAndPriorityBroken exercises P3/P4: for
// events submitted out of priority order, delivery is non-decreasing in
// time, and priority breaks ties at equal time.
func TestSimulator_EventOrderMonotonicAndPriorityBroken(t *testing.T) {
	s := NewSimulator(nil)
	var order []EventType

	rec := EventListenerFunc(func(ev Event, _ *Simulator) {
		order = append(order, ev.Type())
	})
	s.AddEventListener(rec)

	dc := NewDatacenter(nil, nil)
	// HostAddEvent/VMFailEvent/CloudletFailEvent are reserved no-op
	// stubs (spec §4.7): safe to dispatch with nil payloads, which keeps
	// this test focused purely on ordering.
	require.NoError(t, s.Submit(&CloudletFailEvent{baseEvent: newBaseEvent(5, s.nextSeq(), EventCloudletFail, nil, dc)}))
	require.NoError(t, s.Submit(&VMFailEvent{baseEvent: newBaseEvent(5, s.nextSeq(), EventVMFail, nil, dc)}))
	require.NoError(t, s.Submit(&HostAddEvent{baseEvent: newBaseEvent(5, s.nextSeq(), EventHostAdd, nil, dc)}))
	require.NoError(t, s.SetTerminationTime(6))

	s.RunUntilPauseOrTerminate()

	// At t=5, three events share a timestamp; priority must fully
	// determine their delivery order: HOST_ADD(200) < VM_FAIL(300) <
	// CLOUDLET_FAIL(400). SIMULATION_TERMINATE follows at t=6 and ends the
	// loop.
	require.Len(t, order, 4)
	for i := 1; i < 3; i++ {
		assert.LessOrEqual(t, order[i-1].Priority(), order[i].Priority())
	}
	assert.Equal(t, []EventType{EventHostAdd, EventVMFail, EventCloudletFail, EventSimulationTerminate}, order)
}

// TestSimulator_SubmitRejectsPastEvents guards P3/P6 causality: you
// cannot schedule into the past.
func TestSimulator_SubmitRejectsPastEvents(t *testing.T) {
	s := NewSimulator(nil)
	require.NoError(t, s.SetTerminationTime(10))
	s.RunUntilPauseOrTerminate() // clock now at 10 (explicit termination time, no rewind), state TERMINATED

	s2 := NewSimulator(nil)
	require.NoError(t, s2.Submit(newSimulationPauseEvent(s2, 5)))
	s2.RunUntilPauseOrTerminate()
	require.Equal(t, 5.0, s2.Clock())

	err := s2.Submit(newSimulationPauseEvent(s2, 1))
	assert.Error(t, err)
}

// TestSimulator_IdempotentAfterTerminate exercises P7: calling the main
// loop again after TERMINATED is a no-op.
func TestSimulator_IdempotentAfterTerminate(t *testing.T) {
	s := NewSimulator(nil)
	s.RunUntilPauseOrTerminate()
	clockAfterFirst := s.Clock()

	s.RunUntilPauseOrTerminate()
	assert.Equal(t, clockAfterFirst, s.Clock())
	assert.Equal(t, SimTerminated, s.State())
}

func TestSimulator_PauseThenResume(t *testing.T) {
	s := NewSimulator(nil)
	require.NoError(t, s.Submit(newSimulationPauseEvent(s, 3)))
	s.RunUntilPauseOrTerminate()
	assert.Equal(t, SimPaused, s.State())
	assert.Equal(t, 3.0, s.Clock())

	require.NoError(t, s.SetTerminationTime(10))
	s.RunUntilPauseOrTerminate()
	assert.Equal(t, SimTerminated, s.State())
}
