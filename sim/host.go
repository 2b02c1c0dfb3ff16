package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// HostSpec groups the construction-time parameters for a Host (spec §3
// "Static entities").
type HostSpec struct {
	ID             int
	PECapacity     []float64 // MIPS rating of each PE, in insertion order
	RAMCapacity    float64
	StorageCapacity float64
	BandwidthCapacity float64
}

// Host is a physical machine: an ordered sequence of PEs plus fungible
// RAM/Storage/Bandwidth counters. A Host exclusively owns its PEs; it
// carves out virtual PEs for VMs at bind time but never relinquishes the
// underlying host PE (spec §3 "Host ↔ VM ↔ Cloudlet relationships").
type Host struct {
	id              uuid.UUID
	numericID       int
	pes             []*PE // insertion order, preserved for max-fit's "first FREE PE" rule
	numPesAvailable int

	ram       *Capacity
	storage   *Capacity
	bandwidth *Capacity

	// vmPEMapping maps a virtual PE's id to the host PE it was carved
	// from. Only this direction is stored; a host PE is not mapped back
	// to its virtual PE.
	vmPEMapping map[uuid.UUID]uuid.UUID
	// vmPEs maps a VmRunning's id to the list of virtual PE ids carved
	// for it, in allocation order.
	vmPEs map[uuid.UUID][]uuid.UUID

	vmRAM       map[uuid.UUID]*Capacity
	vmStorage   map[uuid.UUID]*Capacity
	vmBandwidth map[uuid.UUID]*Capacity

	vmRunning map[uuid.UUID]*VmRunning

	datacenter *Datacenter
}

// NewHost builds a Host from spec. At least one PE capacity must be
// given, and all capacities must be strictly positive.
func NewHost(spec HostSpec) (*Host, error) {
	if len(spec.PECapacity) == 0 {
		return nil, fmt.Errorf("%w: host must have at least one PE", ErrInvalidInput)
	}
	pes := make([]*PE, 0, len(spec.PECapacity))
	for _, mips := range spec.PECapacity {
		pe, err := NewPE(mips)
		if err != nil {
			return nil, err
		}
		pes = append(pes, pe)
	}
	ram, err := NewCapacity("ram", spec.RAMCapacity)
	if err != nil {
		return nil, err
	}
	storage, err := NewCapacity("storage", spec.StorageCapacity)
	if err != nil {
		return nil, err
	}
	bandwidth, err := NewCapacity("bandwidth", spec.BandwidthCapacity)
	if err != nil {
		return nil, err
	}
	return &Host{
		id:              uuid.New(),
		numericID:       spec.ID,
		pes:             pes,
		numPesAvailable: len(pes),
		ram:             ram,
		storage:         storage,
		bandwidth:       bandwidth,
		vmPEMapping:     make(map[uuid.UUID]uuid.UUID),
		vmPEs:           make(map[uuid.UUID][]uuid.UUID),
		vmRAM:           make(map[uuid.UUID]*Capacity),
		vmStorage:       make(map[uuid.UUID]*Capacity),
		vmBandwidth:     make(map[uuid.UUID]*Capacity),
		vmRunning:       make(map[uuid.UUID]*VmRunning),
	}, nil
}

func (h *Host) ID() uuid.UUID         { return h.id }
func (h *Host) NumericID() int        { return h.numericID }
func (h *Host) NumPes() int           { return len(h.pes) }
func (h *Host) NumPesAvailable() int  { return h.numPesAvailable }
func (h *Host) RAM() *Capacity        { return h.ram }
func (h *Host) Storage() *Capacity    { return h.storage }
func (h *Host) Bandwidth() *Capacity  { return h.bandwidth }
func (h *Host) Datacenter() *Datacenter { return h.datacenter }

func (h *Host) setDatacenter(dc *Datacenter) { h.datacenter = dc }

// fitsVM reports whether the host currently has enough free PEs and
// fungible resource to accommodate vm, without mutating any state. Used
// by HostSuitability (placement.go).
func (h *Host) fitsVM(vm *VmRunning) bool {
	return vm.NumPes() <= h.numPesAvailable &&
		vm.SizeRAM() <= h.ram.Available() &&
		vm.SizeStorage() <= h.storage.Available() &&
		vm.SizeBandwidth() <= h.bandwidth.Available()
}

// bindVM carves out vm.NumPes() free host PEs for vm, allocates host
// RAM/Storage/Bandwidth, and creates matching owned counters on vm
// (spec §4.4 bind_vm). Caller (placement) must have already verified
// fitsVM; an exhaustion error here means a suitability/bind race and is
// an invariant violation.
func (h *Host) bindVM(vm *VmRunning) error {
	if vm.NumPes() > h.numPesAvailable {
		return fmt.Errorf("%w: host %d has %d PEs available, vm needs %d", ErrResourceExhausted, h.numericID, h.numPesAvailable, vm.NumPes())
	}

	carved := make([]*PE, 0, vm.NumPes())
	for _, hostPE := range h.pes {
		if len(carved) == vm.NumPes() {
			break
		}
		if hostPE.State() == PEFree {
			hostPE.SetState(PEBusy)
			vPE, err := NewPE(vm.HostMipsFactor() * hostPE.MIPSCapacity())
			if err != nil {
				return err
			}
			h.vmPEMapping[vPE.ID()] = hostPE.ID()
			h.vmPEs[vm.ID()] = append(h.vmPEs[vm.ID()], vPE.ID())
			vm.addVirtualPE(vPE)
			carved = append(carved, vPE)
		}
	}
	h.numPesAvailable -= vm.NumPes()
	vm.setMips(carved[0].MIPSCapacity())

	// A VM may request zero of a fungible resource; its owned counter then
	// has zero capacity, which NewCapacity would reject.
	newVMCounter := func(kind string, size float64) (*Capacity, error) {
		if size == 0 {
			return &Capacity{id: uuid.New(), kind: kind}, nil
		}
		return NewCapacity(kind, size)
	}

	vmRAM, err := newVMCounter("vm-ram", vm.SizeRAM())
	if err != nil {
		return err
	}
	if err := h.ram.Allocate(vmRAM.CapacityTotal()); err != nil {
		return err
	}
	h.vmRAM[vmRAM.ID()] = vmRAM
	vm.setRAM(vmRAM)

	vmStorage, err := newVMCounter("vm-storage", vm.SizeStorage())
	if err != nil {
		return err
	}
	if err := h.storage.Allocate(vmStorage.CapacityTotal()); err != nil {
		return err
	}
	h.vmStorage[vmStorage.ID()] = vmStorage
	vm.setStorage(vmStorage)

	vmBandwidth, err := newVMCounter("vm-bandwidth", vm.SizeBandwidth())
	if err != nil {
		return err
	}
	if err := h.bandwidth.Allocate(vmBandwidth.CapacityTotal()); err != nil {
		return err
	}
	h.vmBandwidth[vmBandwidth.ID()] = vmBandwidth
	vm.setBandwidth(vmBandwidth)

	h.vmRunning[vm.ID()] = vm
	vm.setHost(h)
	return nil
}

// releaseVM is the exact inverse of bindVM (spec §4.4 release_vm).
func (h *Host) releaseVM(vm *VmRunning) error {
	if _, ok := h.vmRunning[vm.ID()]; !ok {
		return fmt.Errorf("%w: host %d does not own vm %d", ErrInvalidState, h.numericID, vm.NumericID())
	}
	vm.setHost(nil)
	delete(h.vmRunning, vm.ID())

	if err := h.bandwidth.Deallocate(vm.Bandwidth().CapacityTotal()); err != nil {
		return err
	}
	delete(h.vmBandwidth, vm.Bandwidth().ID())
	vm.setBandwidth(nil)

	if err := h.storage.Deallocate(vm.Storage().CapacityTotal()); err != nil {
		return err
	}
	delete(h.vmStorage, vm.Storage().ID())
	vm.setStorage(nil)

	if err := h.ram.Deallocate(vm.RAM().CapacityTotal()); err != nil {
		return err
	}
	delete(h.vmRAM, vm.RAM().ID())
	vm.setRAM(nil)

	vm.clearVirtualPEs()
	h.numPesAvailable += vm.NumPes()
	vPEIDs := h.vmPEs[vm.ID()]
	delete(h.vmPEs, vm.ID())
	for _, vPEID := range vPEIDs {
		hostPEID := h.vmPEMapping[vPEID]
		for _, hostPE := range h.pes {
			if hostPE.ID() == hostPEID {
				hostPE.SetState(PEFree)
				break
			}
		}
		delete(h.vmPEMapping, vPEID)
	}
	return nil
}
