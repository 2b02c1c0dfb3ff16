package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, id int, numPes int, mips float64) *Host {
	t.Helper()
	pes := make([]float64, numPes)
	for i := range pes {
		pes[i] = mips
	}
	h, err := NewHost(HostSpec{ID: id, PECapacity: pes, RAMCapacity: 1024, StorageCapacity: 1024, BandwidthCapacity: 1024})
	require.NoError(t, err)
	return h
}

func newTestVmRunning(t *testing.T, id int, numPes int) *VmRunning {
	t.Helper()
	vm, err := NewVm(VmSpec{ID: id, HostMipsFactor: 1, NumPes: numPes, SizeRAM: 100, SizeStorage: 100, SizeBandwidth: 100, StartupDelay: 30, ShutdownDelay: 10})
	require.NoError(t, err)
	return NewVmRunning(vm)
}

func TestNewHost_RejectsNoPEs(t *testing.T) {
	_, err := NewHost(HostSpec{ID: 1, PECapacity: nil, RAMCapacity: 1, StorageCapacity: 1, BandwidthCapacity: 1})
	assert.Error(t, err)
}

func TestHost_BindVM_CarvesVirtualPEsAndAllocatesResources(t *testing.T) {
	h := newTestHost(t, 1, 4, 1000)
	vm := newTestVmRunning(t, 1, 2)

	require.True(t, h.fitsVM(vm))
	require.NoError(t, h.bindVM(vm))

	assert.Equal(t, 2, h.NumPesAvailable(), "I1: num_pes_available + vm.num_pes == total")
	assert.Equal(t, vm, h.vmRunning[vm.ID()])
	assert.Equal(t, h, vm.Host())
	assert.InDelta(t, 1000.0, vm.GetMips(), 1e-9)
	assert.InDelta(t, 924.0, h.RAM().Available(), 1e-9) // 1024-100
	assert.Equal(t, 2, len(h.vmPEs[vm.ID()]))

	for _, vPEID := range h.vmPEs[vm.ID()] {
		hostPEID := h.vmPEMapping[vPEID]
		var hostPE *PE
		for _, p := range h.pes {
			if p.ID() == hostPEID {
				hostPE = p
			}
		}
		require.NotNil(t, hostPE)
		assert.Equal(t, PEBusy, hostPE.State())
	}
}

func TestHost_BindVM_InsufficientPEsFails(t *testing.T) {
	h := newTestHost(t, 1, 2, 1000)
	vm := newTestVmRunning(t, 1, 4)

	assert.False(t, h.fitsVM(vm))
	err := h.bindVM(vm)
	assert.Error(t, err)
	assert.Equal(t, 2, h.NumPesAvailable(), "failed bind must not mutate host state")
}

func TestHost_ReleaseVM_IsExactInverseOfBind(t *testing.T) {
	h := newTestHost(t, 1, 4, 1000)
	vm := newTestVmRunning(t, 1, 2)
	require.NoError(t, h.bindVM(vm))

	require.NoError(t, h.releaseVM(vm))
	assert.Equal(t, 4, h.NumPesAvailable())
	assert.Equal(t, 1024.0, h.RAM().Available())
	assert.Equal(t, 1024.0, h.Storage().Available())
	assert.Equal(t, 1024.0, h.Bandwidth().Available())
	assert.Nil(t, vm.Host())

	for _, pe := range h.pes {
		assert.Equal(t, PEFree, pe.State())
	}
}

func TestHost_ReleaseVM_NotOwnedReturnsError(t *testing.T) {
	h := newTestHost(t, 1, 4, 1000)
	vm := newTestVmRunning(t, 1, 2)
	err := h.releaseVM(vm)
	assert.Error(t, err)
}

func TestHost_VirtualPEMipsScalesByHostMipsFactor(t *testing.T) {
	h := newTestHost(t, 1, 2, 2000)
	vm, err := NewVm(VmSpec{ID: 2, HostMipsFactor: 0.5, NumPes: 2, StartupDelay: 1, ShutdownDelay: 1})
	require.NoError(t, err)
	vr := NewVmRunning(vm)
	require.NoError(t, h.bindVM(vr))
	assert.InDelta(t, 1000.0, vr.GetMips(), 1e-9)
}
