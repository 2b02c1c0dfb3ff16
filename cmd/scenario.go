package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/cloudsim/cloudsim/sim"
)

// HostYAML is the on-disk shape of a single host entry (spec §3 Host).
type HostYAML struct {
	ID         int       `yaml:"id"`
	PEMips     []float64 `yaml:"pe_mips"`
	RAM        float64   `yaml:"ram"`
	Storage    float64   `yaml:"storage"`
	Bandwidth  float64   `yaml:"bandwidth"`
}

// VmYAML is the on-disk shape of a single VM entry (spec §3 VM descriptor).
type VmYAML struct {
	ID             int     `yaml:"id"`
	HostMipsFactor float64 `yaml:"host_mips_factor"`
	NumPes         int     `yaml:"num_pes"`
	SizeRAM        float64 `yaml:"size_ram"`
	SizeStorage    float64 `yaml:"size_storage"`
	SizeBandwidth  float64 `yaml:"size_bandwidth"`
	StartupDelay   float64 `yaml:"startup_delay"`
	ShutdownDelay  float64 `yaml:"shutdown_delay"`
}

// CloudletYAML is the on-disk shape of a single cloudlet entry (spec §3
// Cloudlet descriptor).
type CloudletYAML struct {
	ID                int     `yaml:"id"`
	LengthMI          float64 `yaml:"length_mi"`
	NumPes            int     `yaml:"num_pes"`
	UtilizationPE     float64 `yaml:"utilization_pe"`
	RequiredRAM       float64 `yaml:"required_ram"`
	RequiredStorage   float64 `yaml:"required_storage"`
	RequiredBandwidth float64 `yaml:"required_bandwidth"`
	SubmitTime        float64 `yaml:"submit_time"`
}

// ScenarioConfig is the root scenario document: the datacenter's initial
// host fleet, the VM and cloudlet batches to submit, and run controls.
// Unrecognized keys are rejected (strict decoding), mirroring the
// teacher's PolicyBundle loader.
type ScenarioConfig struct {
	Hosts                  []HostYAML     `yaml:"hosts"`
	Vms                    []VmYAML       `yaml:"vms"`
	Cloudlets              []CloudletYAML `yaml:"cloudlets"`
	TerminationTime        *float64       `yaml:"termination_time"`
	CircularClockInterval  *float64       `yaml:"circular_clock_interval_s"`
}

// LoadScenarioConfig reads and strictly decodes a scenario YAML file.
func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	var cfg ScenarioConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("scenario config must declare at least one host")
	}
	return &cfg, nil
}

// BuildHosts constructs Host entities from the scenario's host declarations.
func (c *ScenarioConfig) BuildHosts() ([]*sim.Host, error) {
	hosts := make([]*sim.Host, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		host, err := sim.NewHost(sim.HostSpec{
			ID:                h.ID,
			PECapacity:        h.PEMips,
			RAMCapacity:       h.RAM,
			StorageCapacity:   h.Storage,
			BandwidthCapacity: h.Bandwidth,
		})
		if err != nil {
			return nil, fmt.Errorf("building host %d: %w", h.ID, err)
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// BuildVms constructs VM descriptors from the scenario's VM declarations.
func (c *ScenarioConfig) BuildVms() ([]*sim.Vm, error) {
	vms := make([]*sim.Vm, 0, len(c.Vms))
	for _, v := range c.Vms {
		vm, err := sim.NewVm(sim.VmSpec{
			ID:             v.ID,
			HostMipsFactor: v.HostMipsFactor,
			NumPes:         v.NumPes,
			SizeRAM:        v.SizeRAM,
			SizeStorage:    v.SizeStorage,
			SizeBandwidth:  v.SizeBandwidth,
			StartupDelay:   v.StartupDelay,
			ShutdownDelay:  v.ShutdownDelay,
		})
		if err != nil {
			return nil, fmt.Errorf("building vm %d: %w", v.ID, err)
		}
		vms = append(vms, vm)
	}
	return vms, nil
}

// BuildCloudlets constructs cloudlet descriptors, grouped by submit_time so
// the caller can schedule one cloudlet-submit batch per submit time.
func (c *ScenarioConfig) BuildCloudlets() (map[float64][]*sim.Cloudlet, error) {
	batches := make(map[float64][]*sim.Cloudlet)
	for _, cl := range c.Cloudlets {
		cloudlet, err := sim.NewCloudlet(sim.CloudletSpec{
			ID:                cl.ID,
			LengthMI:          cl.LengthMI,
			NumPes:            cl.NumPes,
			UtilizationPE:     cl.UtilizationPE,
			RequiredRAM:       cl.RequiredRAM,
			RequiredStorage:   cl.RequiredStorage,
			RequiredBandwidth: cl.RequiredBandwidth,
		})
		if err != nil {
			return nil, fmt.Errorf("building cloudlet %d: %w", cl.ID, err)
		}
		batches[cl.SubmitTime] = append(batches[cl.SubmitTime], cloudlet)
	}
	return batches, nil
}
