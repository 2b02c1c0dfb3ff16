package cmd

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/cloudsim/cloudsim/sim"
)

func TestPrometheusEventListener_CountsDispatchedEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	l, err := NewPrometheusEventListener(reg)
	require.NoError(t, err)

	host, err := sim.NewHost(sim.HostSpec{ID: 1, PECapacity: []float64{1000, 1000}, RAMCapacity: 1024, StorageCapacity: 1024, BandwidthCapacity: 1024})
	require.NoError(t, err)
	dc := sim.NewDatacenter([]*sim.Host{host}, nil)
	s := sim.NewSimulator(nil)
	s.SetDatacenter(dc)
	s.AddEventListener(l)

	broker, err := sim.NewBroker(s, dc)
	require.NoError(t, err)
	vm, err := sim.NewVm(sim.VmSpec{ID: 1, HostMipsFactor: 1, NumPes: 2, StartupDelay: 1, ShutdownDelay: 1})
	require.NoError(t, err)
	require.NoError(t, broker.SubmitVmList([]*sim.Vm{vm}))

	require.NoError(t, s.SetTerminationTime(2))
	s.RunUntilPauseOrTerminate()

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	var eventsFamily *string
	for _, mf := range metricFamilies {
		name := mf.GetName()
		if name == "cloudsim_events_total" {
			eventsFamily = &name
			assert.NotEmpty(t, mf.Metric, "expected at least one event type counted")
		}
	}
	assert.NotNil(t, eventsFamily)
}
