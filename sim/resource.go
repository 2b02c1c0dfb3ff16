// Resource counters for hosts and VMs: PE (CPU core), RAM, Storage and
// Bandwidth. Each is a value-ish object owned by exactly one host or VM;
// the simulator is single-threaded (spec §5) so none of these synchronize.
package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// Capacity is a fungible resource counter (RAM, Storage, Bandwidth) with a
// fixed capacity and a live available amount. Allocation and deallocation
// are the only mutators; Capacity never goes negative and Available never
// exceeds Capacity (spec I3).
type Capacity struct {
	id        uuid.UUID
	kind      string
	capacity  float64
	available float64
}

// NewCapacity creates a counter with the given capacity. capacity must be
// strictly positive.
func NewCapacity(kind string, capacity float64) (*Capacity, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %s capacity must be > 0, got %g", ErrInvalidInput, kind, capacity)
	}
	return &Capacity{
		id:        uuid.New(),
		kind:      kind,
		capacity:  capacity,
		available: capacity,
	}, nil
}

// ID returns the counter's unique identity.
func (c *Capacity) ID() uuid.UUID { return c.id }

// CapacityTotal returns the fixed total capacity.
func (c *Capacity) CapacityTotal() float64 { return c.capacity }

// Available returns the currently unallocated amount.
func (c *Capacity) Available() float64 { return c.available }

// Utilization returns the fraction of capacity currently allocated.
func (c *Capacity) Utilization() float64 {
	return (c.capacity - c.available) / c.capacity
}

// Allocate reserves amount from the counter. Fails with
// ErrResourceExhausted if amount exceeds what's available, and with
// ErrInvalidInput if amount is negative.
func (c *Capacity) Allocate(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %s allocate amount must be >= 0, got %g", ErrInvalidInput, c.kind, amount)
	}
	if amount > c.available {
		return fmt.Errorf("%w: %s allocate %g exceeds available %g", ErrResourceExhausted, c.kind, amount, c.available)
	}
	c.available -= amount
	return nil
}

// Deallocate releases amount back to the counter. Fails with
// ErrInvalidState if that would push Available above Capacity — i.e. the
// caller is releasing more than it ever held.
func (c *Capacity) Deallocate(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %s deallocate amount must be >= 0, got %g", ErrInvalidInput, c.kind, amount)
	}
	if c.available+amount > c.capacity {
		return fmt.Errorf("%w: %s deallocate %g would exceed capacity %g", ErrInvalidState, c.kind, amount, c.capacity)
	}
	c.available += amount
	return nil
}

// PEState is the FREE/BUSY flag a host toggles when it carves a virtual
// PE for a VM.
type PEState int

const (
	PEFree PEState = iota
	PEBusy
)

func (s PEState) String() string {
	if s == PEBusy {
		return "BUSY"
	}
	return "FREE"
}

// PE models a single CPU core rated in MIPS. Every PE starts FREE. A host
// PE turns BUSY when a virtual PE is carved from it for a VM; the virtual
// PE, paired 1:1 with that host PE, stays FREE until a cloudlet binds it.
type PE struct {
	id             uuid.UUID
	mipsCapacity   float64
	state          PEState
	utilizationPct float64
}

// NewPE creates a PE rated at mipsCapacity MIPS. mipsCapacity must be > 0.
func NewPE(mipsCapacity float64) (*PE, error) {
	if mipsCapacity <= 0 {
		return nil, fmt.Errorf("%w: PE mips capacity must be > 0, got %g", ErrInvalidInput, mipsCapacity)
	}
	return &PE{
		id:           uuid.New(),
		mipsCapacity: mipsCapacity,
		state:        PEFree,
	}, nil
}

func (p *PE) ID() uuid.UUID           { return p.id }
func (p *PE) MIPSCapacity() float64   { return p.mipsCapacity }
func (p *PE) State() PEState          { return p.state }
func (p *PE) SetState(s PEState)      { p.state = s }
func (p *PE) UtilizationAllocated() float64 { return p.utilizationPct }
func (p *PE) UtilizationAvailable() float64 { return 1 - p.utilizationPct }

// Allocate adds u to the PE's accumulated utilization. u must be in (0,1].
func (p *PE) Allocate(u float64) error {
	if u <= 0 || u > 1 {
		return fmt.Errorf("%w: PE utilization must be in (0,1], got %g", ErrInvalidInput, u)
	}
	p.utilizationPct += u
	return nil
}

// Deallocate removes u from the PE's accumulated utilization. u must be
// in (0,1].
func (p *PE) Deallocate(u float64) error {
	if u <= 0 || u > 1 {
		return fmt.Errorf("%w: PE utilization must be in (0,1], got %g", ErrInvalidInput, u)
	}
	if u > p.utilizationPct+1e-9 {
		return fmt.Errorf("%w: PE deallocate %g exceeds allocated %g", ErrInvalidState, u, p.utilizationPct)
	}
	p.utilizationPct -= u
	return nil
}
