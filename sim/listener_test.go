package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventListenerFunc_AdaptsPlainFunction(t *testing.T) {
	var seen EventType
	var l EventListener = EventListenerFunc(func(ev Event, _ *Simulator) {
		seen = ev.Type()
	})
	s := NewSimulator(nil)
	l.Update(&SimulationPauseEvent{baseEvent: newBaseEvent(1, s.nextSeq(), EventSimulationPause, s, s)}, s)
	assert.Equal(t, EventSimulationPause, seen)
}

// TestListeners_FireBeforeDispatch verifies spec §4.10: event listeners
// observe an event before its target's handler runs.
func TestListeners_FireBeforeDispatch(t *testing.T) {
	h := newTestHost(t, 1, 2, 1000)
	dc := NewDatacenter([]*Host{h}, nil)
	s := NewSimulator(nil)
	s.SetDatacenter(dc)

	var sawBootedBeforeHandler bool
	vm, err := NewVm(VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 2, StartupDelay: 0, ShutdownDelay: 1})
	require.NoError(t, err)
	vr := NewVmRunning(vm)
	require.NoError(t, h.bindVM(vr))

	s.AddEventListener(EventListenerFunc(func(ev Event, _ *Simulator) {
		if ev.Type() == EventVMBootup {
			sawBootedBeforeHandler = vr.State() != VmRunningState
		}
	}))

	require.NoError(t, s.Submit(newVMBootupEvent(s, 0, dc, vr)))
	require.NoError(t, s.SetTerminationTime(1))
	s.RunUntilPauseOrTerminate()

	assert.True(t, sawBootedBeforeHandler)
	assert.Equal(t, VmRunningState, vr.State())
}
