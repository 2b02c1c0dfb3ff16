package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBroker_RejectsNilDatacenter(t *testing.T) {
	s := NewSimulator(nil)
	_, err := NewBroker(s, nil)
	assert.Error(t, err)
}

func TestBroker_SubmitVmList_MarksSubmittedAndEnqueuesBind(t *testing.T) {
	h := newTestHost(t, 1, 4, 1000)
	dc := NewDatacenter([]*Host{h}, nil)
	s := NewSimulator(nil)
	s.SetDatacenter(dc)
	broker, err := NewBroker(s, dc)
	require.NoError(t, err)

	vm, err := NewVm(VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 2, StartupDelay: 5, ShutdownDelay: 5})
	require.NoError(t, err)
	require.NoError(t, broker.SubmitVmList([]*Vm{vm}))
	assert.Equal(t, VmSubmitted, vm.State())

	s.RunUntilPauseOrTerminate()
	assert.Equal(t, VmRunningState, vm.State())
}

func TestBroker_SubmitEmptyBatchesAreNoops(t *testing.T) {
	h := newTestHost(t, 1, 4, 1000)
	dc := NewDatacenter([]*Host{h}, nil)
	s := NewSimulator(nil)
	broker, err := NewBroker(s, dc)
	require.NoError(t, err)

	require.NoError(t, broker.SubmitVmList(nil))
	require.NoError(t, broker.SubmitCloudletList(nil))
}
