package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/cloudsim/cloudsim/sim"
)

func TestBuildScenarioReport_SummarizesSucceededCloudlets(t *testing.T) {
	host, err := sim.NewHost(sim.HostSpec{ID: 1, PECapacity: []float64{1000, 1000, 1000, 1000}, RAMCapacity: 4096, StorageCapacity: 4096, BandwidthCapacity: 4096})
	require.NoError(t, err)
	dc := sim.NewDatacenter([]*sim.Host{host}, nil)
	s := sim.NewSimulator(nil)
	s.SetDatacenter(dc)

	broker, err := sim.NewBroker(s, dc)
	require.NoError(t, err)
	vm, err := sim.NewVm(sim.VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 2, StartupDelay: 0, ShutdownDelay: 1})
	require.NoError(t, err)
	require.NoError(t, broker.SubmitVmList([]*sim.Vm{vm}))

	c1, err := sim.NewCloudlet(sim.CloudletSpec{ID: 1, LengthMI: 1000, NumPes: 1, UtilizationPE: 1})
	require.NoError(t, err)
	c2, err := sim.NewCloudlet(sim.CloudletSpec{ID: 2, LengthMI: 2000, NumPes: 1, UtilizationPE: 1})
	require.NoError(t, err)
	require.NoError(t, broker.SubmitCloudletList([]*sim.Cloudlet{c1, c2}))

	s.RunUntilPauseOrTerminate()

	report := BuildScenarioReport(dc)
	assert.Equal(t, 2, report.CloudletsSucceeded)
	assert.Greater(t, report.MeanTurnaround, 0.0)
}
