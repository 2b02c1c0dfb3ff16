package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// CloudletState is the cloudlet lifecycle (spec §3):
// CREATED → SUBMITTED → RUNNING → {SUCCEEDED | FAILED | CANCELED}.
type CloudletState int

const (
	CloudletCreated CloudletState = iota
	CloudletSubmitted
	CloudletRunningState
	CloudletSucceeded
	CloudletFailedState
	CloudletCanceled
)

func (s CloudletState) String() string {
	switch s {
	case CloudletCreated:
		return "CREATED"
	case CloudletSubmitted:
		return "SUBMITTED"
	case CloudletRunningState:
		return "RUNNING"
	case CloudletSucceeded:
		return "SUCCEEDED"
	case CloudletFailedState:
		return "FAILED"
	case CloudletCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// CloudletSpec groups construction-time parameters for a cloudlet
// descriptor (spec §3).
type CloudletSpec struct {
	ID                int
	LengthMI          float64
	NumPes            int
	UtilizationPE     float64
	RequiredRAM       float64
	RequiredStorage   float64
	RequiredBandwidth float64
}

// Cloudlet is the unit of work. Its parameters are fixed at construction;
// only its lifecycle state and start/end times change afterwards.
type Cloudlet struct {
	id                uuid.UUID
	numericID         int
	lengthMI          float64
	numPes            int
	utilizationPE     float64
	requiredRAM       float64
	requiredStorage   float64
	requiredBandwidth float64

	state     CloudletState
	startTime float64
	endTime   float64
}

// NewCloudlet validates and constructs a cloudlet descriptor.
func NewCloudlet(spec CloudletSpec) (*Cloudlet, error) {
	if spec.LengthMI <= 0 {
		return nil, fmt.Errorf("%w: cloudlet length_mi must be > 0, got %g", ErrInvalidInput, spec.LengthMI)
	}
	if spec.NumPes < 1 {
		return nil, fmt.Errorf("%w: cloudlet num_pes must be >= 1, got %d", ErrInvalidInput, spec.NumPes)
	}
	if spec.UtilizationPE <= 0 || spec.UtilizationPE > 1 {
		return nil, fmt.Errorf("%w: cloudlet utilization_pe must be in (0,1], got %g", ErrInvalidInput, spec.UtilizationPE)
	}
	if spec.RequiredRAM < 0 || spec.RequiredStorage < 0 || spec.RequiredBandwidth < 0 {
		return nil, fmt.Errorf("%w: cloudlet required resources must be >= 0", ErrInvalidInput)
	}
	return &Cloudlet{
		id:                uuid.New(),
		numericID:         spec.ID,
		lengthMI:          spec.LengthMI,
		numPes:            spec.NumPes,
		utilizationPE:     spec.UtilizationPE,
		requiredRAM:       spec.RequiredRAM,
		requiredStorage:   spec.RequiredStorage,
		requiredBandwidth: spec.RequiredBandwidth,
		state:             CloudletCreated,
	}, nil
}

func (c *Cloudlet) ID() uuid.UUID            { return c.id }
func (c *Cloudlet) NumericID() int           { return c.numericID }
func (c *Cloudlet) LengthMI() float64        { return c.lengthMI }
func (c *Cloudlet) NumPes() int              { return c.numPes }
func (c *Cloudlet) UtilizationPE() float64   { return c.utilizationPE }
func (c *Cloudlet) RequiredRAM() float64     { return c.requiredRAM }
func (c *Cloudlet) RequiredStorage() float64 { return c.requiredStorage }
func (c *Cloudlet) RequiredBandwidth() float64 { return c.requiredBandwidth }
func (c *Cloudlet) State() CloudletState     { return c.state }
func (c *Cloudlet) SetState(s CloudletState) { c.state = s }
func (c *Cloudlet) StartTime() float64       { return c.startTime }
func (c *Cloudlet) EndTime() float64         { return c.endTime }

// CloudletRunning is the live binding wrapper layered on a Cloudlet
// descriptor once it has been placed on a VM (spec §3).
type CloudletRunning struct {
	cloudlet  *Cloudlet
	vmRunning *VmRunning
}

// NewCloudletRunning wraps c as a live binding record, not yet attached
// to any VM.
func NewCloudletRunning(c *Cloudlet) *CloudletRunning {
	return &CloudletRunning{cloudlet: c}
}

func (c *CloudletRunning) Cloudlet() *Cloudlet            { return c.cloudlet }
func (c *CloudletRunning) ID() uuid.UUID                  { return c.cloudlet.ID() }
func (c *CloudletRunning) NumericID() int                 { return c.cloudlet.NumericID() }
func (c *CloudletRunning) LengthMI() float64              { return c.cloudlet.LengthMI() }
func (c *CloudletRunning) NumPes() int                    { return c.cloudlet.NumPes() }
func (c *CloudletRunning) UtilizationPE() float64         { return c.cloudlet.UtilizationPE() }
func (c *CloudletRunning) RequiredRAM() float64           { return c.cloudlet.RequiredRAM() }
func (c *CloudletRunning) RequiredStorage() float64       { return c.cloudlet.RequiredStorage() }
func (c *CloudletRunning) RequiredBandwidth() float64     { return c.cloudlet.RequiredBandwidth() }
func (c *CloudletRunning) State() CloudletState           { return c.cloudlet.State() }
func (c *CloudletRunning) SetState(s CloudletState)       { c.cloudlet.SetState(s) }
func (c *CloudletRunning) StartTime() float64             { return c.cloudlet.startTime }
func (c *CloudletRunning) SetStartTime(t float64)         { c.cloudlet.startTime = t }
func (c *CloudletRunning) EndTime() float64               { return c.cloudlet.endTime }
func (c *CloudletRunning) SetEndTime(t float64)           { c.cloudlet.endTime = t }
func (c *CloudletRunning) VmRunning() *VmRunning          { return c.vmRunning }

func (c *CloudletRunning) setVmRunning(v *VmRunning) { c.vmRunning = v }
