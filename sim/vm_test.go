package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoundVmRunning(t *testing.T, numPes int, mips float64) (*Host, *VmRunning) {
	t.Helper()
	h := newTestHost(t, 1, numPes, mips)
	vm, err := NewVm(VmSpec{ID: 1, HostMipsFactor: 1, NumPes: numPes, SizeRAM: 500, SizeStorage: 500, SizeBandwidth: 500, StartupDelay: 30, ShutdownDelay: 10})
	require.NoError(t, err)
	vr := NewVmRunning(vm)
	require.NoError(t, h.bindVM(vr))
	return h, vr
}

func newTestCloudletRunning(t *testing.T, id, numPes int, lengthMI, util float64) *CloudletRunning {
	t.Helper()
	c, err := NewCloudlet(CloudletSpec{ID: id, LengthMI: lengthMI, NumPes: numPes, UtilizationPE: util, RequiredRAM: 10, RequiredStorage: 10, RequiredBandwidth: 10})
	require.NoError(t, err)
	return NewCloudletRunning(c)
}

func TestNewVm_ValidatesConstraints(t *testing.T) {
	_, err := NewVm(VmSpec{ID: 1, HostMipsFactor: 0, NumPes: 1})
	assert.Error(t, err)
	_, err = NewVm(VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 0})
	assert.Error(t, err)
	_, err = NewVm(VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 1, SizeRAM: -1})
	assert.Error(t, err)
}

func TestVmRunning_BindCloudlet_AllocatesVirtualAndHostPEs(t *testing.T) {
	h, vr := newBoundVmRunning(t, 2, 1000)
	c := newTestCloudletRunning(t, 1, 1, 1000, 1.0)

	require.True(t, vr.fitsCloudlet(c))
	require.NoError(t, vr.bindCloudlet(c))

	assert.Equal(t, 1, vr.NumPesAvailable())
	assert.Equal(t, vr, c.VmRunning())
	assert.Equal(t, 490.0, vr.RAM().Available())

	held := vr.cloudletPEs[c.ID()]
	require.Len(t, held, 1)
	vPE := vr.vPEByID[held[0]]
	assert.InDelta(t, 1.0, vPE.UtilizationAllocated(), 1e-9)

	hostPEID := h.vmPEMapping[vPE.ID()]
	var hostPE *PE
	for _, p := range h.pes {
		if p.ID() == hostPEID {
			hostPE = p
		}
	}
	require.NotNil(t, hostPE)
	assert.InDelta(t, 1.0, hostPE.UtilizationAllocated(), 1e-9)
}

func TestVmRunning_BindCloudlet_InsufficientPEsFails(t *testing.T) {
	_, vr := newBoundVmRunning(t, 1, 1000)
	c := newTestCloudletRunning(t, 1, 2, 1000, 1.0)
	assert.False(t, vr.fitsCloudlet(c))
	err := vr.bindCloudlet(c)
	assert.Error(t, err)
}

func TestVmRunning_ReleaseCloudlet_IsExactInverse(t *testing.T) {
	_, vr := newBoundVmRunning(t, 2, 1000)
	c := newTestCloudletRunning(t, 1, 1, 1000, 1.0)
	require.NoError(t, vr.bindCloudlet(c))

	require.NoError(t, vr.releaseCloudlet(c))
	assert.Equal(t, 2, vr.NumPesAvailable())
	assert.Equal(t, 500.0, vr.RAM().Available())
	assert.Nil(t, c.VmRunning())
	for _, pe := range vr.vPEs {
		assert.Equal(t, PEFree, pe.State())
		assert.InDelta(t, 0.0, pe.UtilizationAllocated(), 1e-9)
	}
}

func TestVmRunning_ReleaseCloudlet_NotOwnedReturnsError(t *testing.T) {
	_, vr := newBoundVmRunning(t, 2, 1000)
	c := newTestCloudletRunning(t, 1, 1, 1000, 1.0)
	err := vr.releaseCloudlet(c)
	assert.Error(t, err)
}

func TestVmRunning_ScheduleShutdown(t *testing.T) {
	_, vr := newBoundVmRunning(t, 1, 1000)
	assert.False(t, vr.IsScheduledToShutdown())
	vr.ScheduleShutdown()
	assert.True(t, vr.IsScheduledToShutdown())
}
