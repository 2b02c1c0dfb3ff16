package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// VmState is the VM lifecycle (spec §3):
// CREATED → SUBMITTED → BOUNDED → RUNNING → SHUTTINGDOWN → DESTROYED,
// with {CANCELED, FAILED} reachable from earlier stages.
type VmState int

const (
	VmCreated VmState = iota
	VmSubmitted
	VmBounded
	VmRunningState
	VmShuttingDown
	VmDestroyed
	VmCanceled
	VmFailed
)

func (s VmState) String() string {
	switch s {
	case VmCreated:
		return "CREATED"
	case VmSubmitted:
		return "SUBMITTED"
	case VmBounded:
		return "BOUNDED"
	case VmRunningState:
		return "RUNNING"
	case VmShuttingDown:
		return "SHUTTINGDOWN"
	case VmDestroyed:
		return "DESTROYED"
	case VmCanceled:
		return "CANCELED"
	case VmFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// VmSpec groups construction-time parameters for a VM descriptor (spec §3).
type VmSpec struct {
	ID              int
	HostMipsFactor  float64
	NumPes          int
	SizeRAM         float64
	SizeStorage     float64
	SizeBandwidth   float64
	StartupDelay    float64
	ShutdownDelay   float64
}

// Vm is the VM descriptor. Its parameters are fixed at construction; only
// its lifecycle state changes afterwards.
type Vm struct {
	id             uuid.UUID
	numericID      int
	hostMipsFactor float64
	numPes         int
	sizeRAM        float64
	sizeStorage    float64
	sizeBandwidth  float64
	startupDelay   float64
	shutdownDelay  float64

	state   VmState
	hostID  uuid.UUID
}

// NewVm validates and constructs a VM descriptor.
func NewVm(spec VmSpec) (*Vm, error) {
	if spec.HostMipsFactor <= 0 {
		return nil, fmt.Errorf("%w: vm host_mips_factor must be > 0, got %g", ErrInvalidInput, spec.HostMipsFactor)
	}
	if spec.NumPes < 1 {
		return nil, fmt.Errorf("%w: vm num_pes must be >= 1, got %d", ErrInvalidInput, spec.NumPes)
	}
	if spec.SizeRAM < 0 || spec.SizeStorage < 0 || spec.SizeBandwidth < 0 {
		return nil, fmt.Errorf("%w: vm resource sizes must be >= 0", ErrInvalidInput)
	}
	if spec.StartupDelay < 0 || spec.ShutdownDelay < 0 {
		return nil, fmt.Errorf("%w: vm startup/shutdown delay must be >= 0", ErrInvalidInput)
	}
	return &Vm{
		id:             uuid.New(),
		numericID:      spec.ID,
		hostMipsFactor: spec.HostMipsFactor,
		numPes:         spec.NumPes,
		sizeRAM:        spec.SizeRAM,
		sizeStorage:    spec.SizeStorage,
		sizeBandwidth:  spec.SizeBandwidth,
		startupDelay:   spec.StartupDelay,
		shutdownDelay:  spec.ShutdownDelay,
		state:          VmCreated,
	}, nil
}

func (v *Vm) ID() uuid.UUID          { return v.id }
func (v *Vm) NumericID() int         { return v.numericID }
func (v *Vm) HostMipsFactor() float64 { return v.hostMipsFactor }
func (v *Vm) NumPes() int            { return v.numPes }
func (v *Vm) SizeRAM() float64       { return v.sizeRAM }
func (v *Vm) SizeStorage() float64   { return v.sizeStorage }
func (v *Vm) SizeBandwidth() float64 { return v.sizeBandwidth }
func (v *Vm) StartupDelay() float64  { return v.startupDelay }
func (v *Vm) ShutdownDelay() float64 { return v.shutdownDelay }
func (v *Vm) State() VmState         { return v.state }
func (v *Vm) SetState(s VmState)     { v.state = s }

// VmRunning is the live binding wrapper layered on top of a Vm descriptor
// once it has been placed (spec §3 "Live wrappers"). It owns the virtual
// PEs carved by its host, the allocated RAM/Storage/Bandwidth counters,
// and the set of cloudlets currently bound to it.
type VmRunning struct {
	vm *Vm

	host *Host

	mips            float64
	numPesAvailable int
	// vPEs in carve order; vPEByID for O(1) lookups during bind/release.
	vPEs    []*PE
	vPEByID map[uuid.UUID]*PE

	ram       *Capacity
	storage   *Capacity
	bandwidth *Capacity

	isScheduledToShutdown bool

	// cloudletPEs maps a bound CloudletRunning's id to the virtual PE
	// ids it holds.
	cloudletPEs map[uuid.UUID][]uuid.UUID
	cloudlets   map[uuid.UUID]*CloudletRunning
}

// NewVmRunning wraps vm as a live binding record, not yet attached to any
// host.
func NewVmRunning(vm *Vm) *VmRunning {
	return &VmRunning{
		vm:              vm,
		numPesAvailable: vm.NumPes(),
		vPEByID:         make(map[uuid.UUID]*PE),
		cloudletPEs:     make(map[uuid.UUID][]uuid.UUID),
		cloudlets:       make(map[uuid.UUID]*CloudletRunning),
	}
}

func (v *VmRunning) Vm() *Vm                     { return v.vm }
func (v *VmRunning) ID() uuid.UUID               { return v.vm.ID() }
func (v *VmRunning) NumericID() int              { return v.vm.NumericID() }
func (v *VmRunning) HostMipsFactor() float64     { return v.vm.HostMipsFactor() }
func (v *VmRunning) NumPes() int                 { return v.vm.NumPes() }
func (v *VmRunning) SizeRAM() float64            { return v.vm.SizeRAM() }
func (v *VmRunning) SizeStorage() float64        { return v.vm.SizeStorage() }
func (v *VmRunning) SizeBandwidth() float64      { return v.vm.SizeBandwidth() }
func (v *VmRunning) StartupDelay() float64       { return v.vm.StartupDelay() }
func (v *VmRunning) ShutdownDelay() float64      { return v.vm.ShutdownDelay() }
func (v *VmRunning) State() VmState              { return v.vm.State() }
func (v *VmRunning) SetState(s VmState)          { v.vm.SetState(s) }
func (v *VmRunning) Host() *Host                 { return v.host }
func (v *VmRunning) NumPesAvailable() int        { return v.numPesAvailable }
func (v *VmRunning) RAM() *Capacity              { return v.ram }
func (v *VmRunning) Storage() *Capacity          { return v.storage }
func (v *VmRunning) Bandwidth() *Capacity        { return v.bandwidth }
func (v *VmRunning) IsScheduledToShutdown() bool { return v.isScheduledToShutdown }
func (v *VmRunning) ScheduleShutdown()           { v.isScheduledToShutdown = true }
func (v *VmRunning) CloudletCount() int          { return len(v.cloudlets) }

// GetMips returns the per-virtual-PE MIPS rate, set at bind time as
// host_pe.mips * host_mips_factor (spec §4.5 get_mips).
func (v *VmRunning) GetMips() float64 { return v.mips }

func (v *VmRunning) setMips(m float64)          { v.mips = m }
func (v *VmRunning) setHost(h *Host)            { v.host = h }
func (v *VmRunning) setRAM(c *Capacity)         { v.ram = c }
func (v *VmRunning) setStorage(c *Capacity)     { v.storage = c }
func (v *VmRunning) setBandwidth(c *Capacity)   { v.bandwidth = c }

func (v *VmRunning) addVirtualPE(pe *PE) {
	v.vPEs = append(v.vPEs, pe)
	v.vPEByID[pe.ID()] = pe
}

func (v *VmRunning) clearVirtualPEs() {
	v.vPEs = nil
	v.vPEByID = make(map[uuid.UUID]*PE)
}

// fitsCloudlet reports whether the VM currently has enough free virtual
// PEs and fungible resource to accommodate c, without mutating state.
func (v *VmRunning) fitsCloudlet(c *CloudletRunning) bool {
	return c.NumPes() <= v.numPesAvailable &&
		c.RequiredRAM() <= v.ram.Available() &&
		c.RequiredStorage() <= v.storage.Available() &&
		c.RequiredBandwidth() <= v.bandwidth.Available()
}

// bindCloudlet carves out c.NumPes() free virtual PEs, adds
// c.UtilizationPE() to both the virtual PE and its paired host PE, and
// allocates the VM's RAM/Storage/Bandwidth (spec §4.5 bind_cloudlet).
func (v *VmRunning) bindCloudlet(c *CloudletRunning) error {
	if c.NumPes() > v.numPesAvailable {
		return fmt.Errorf("%w: vm %d has %d vPEs available, cloudlet needs %d", ErrResourceExhausted, v.NumericID(), v.numPesAvailable, c.NumPes())
	}
	held := make([]uuid.UUID, 0, c.NumPes())
	for _, vPE := range v.vPEs {
		if len(held) == c.NumPes() {
			break
		}
		if vPE.State() == PEFree {
			vPE.SetState(PEBusy)
			if err := vPE.Allocate(c.UtilizationPE()); err != nil {
				return err
			}
			hostPEID := v.host.vmPEMapping[vPE.ID()]
			var hostPE *PE
			for _, p := range v.host.pes {
				if p.ID() == hostPEID {
					hostPE = p
					break
				}
			}
			if hostPE == nil {
				return fmt.Errorf("%w: vPE %s has no host PE mapping", ErrInvalidState, vPE.ID())
			}
			if err := hostPE.Allocate(c.UtilizationPE()); err != nil {
				return err
			}
			held = append(held, vPE.ID())
		}
	}
	v.numPesAvailable -= c.NumPes()

	if err := v.ram.Allocate(c.RequiredRAM()); err != nil {
		return err
	}
	if err := v.storage.Allocate(c.RequiredStorage()); err != nil {
		return err
	}
	if err := v.bandwidth.Allocate(c.RequiredBandwidth()); err != nil {
		return err
	}

	v.cloudletPEs[c.ID()] = held
	v.cloudlets[c.ID()] = c
	c.setVmRunning(v)
	return nil
}

// releaseCloudlet is the exact inverse of bindCloudlet.
func (v *VmRunning) releaseCloudlet(c *CloudletRunning) error {
	if _, ok := v.cloudlets[c.ID()]; !ok {
		return fmt.Errorf("%w: vm %d does not own cloudlet %d", ErrInvalidState, v.NumericID(), c.NumericID())
	}
	c.setVmRunning(nil)
	delete(v.cloudlets, c.ID())

	if err := v.bandwidth.Deallocate(c.RequiredBandwidth()); err != nil {
		return err
	}
	if err := v.storage.Deallocate(c.RequiredStorage()); err != nil {
		return err
	}
	if err := v.ram.Deallocate(c.RequiredRAM()); err != nil {
		return err
	}

	v.numPesAvailable += c.NumPes()
	vPEIDs := v.cloudletPEs[c.ID()]
	delete(v.cloudletPEs, c.ID())
	for _, vPEID := range vPEIDs {
		vPE := v.vPEByID[vPEID]
		vPE.SetState(PEFree)
		if err := vPE.Deallocate(c.UtilizationPE()); err != nil {
			return err
		}
		hostPEID := v.host.vmPEMapping[vPEID]
		for _, p := range v.host.pes {
			if p.ID() == hostPEID {
				if err := p.Deallocate(c.UtilizationPE()); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
