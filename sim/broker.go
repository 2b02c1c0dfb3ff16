package sim

import "fmt"

// Broker is the user-facing submission surface (spec §4.2, C7): it turns
// batches of VM/cloudlet descriptors into VM_BIND/CLOUDLET_SUBMIT events
// against a specific datacenter, scheduled at the broker's current clock
// reading.
type Broker struct {
	sim *Simulator
	dc  *Datacenter
}

// NewBroker builds a Broker bound to dc. dc must not be nil: a broker
// with nowhere to submit work is a configuration error (spec §4.2).
func NewBroker(s *Simulator, dc *Datacenter) (*Broker, error) {
	if dc == nil {
		return nil, fmt.Errorf("%w: broker requires a non-nil datacenter", ErrInvalidInput)
	}
	return &Broker{sim: s, dc: dc}, nil
}

// SubmitVmList asks for the batch of VMs to be placed atomically
// (spec §4.7 VM_BIND semantics: all succeed or all are canceled).
func (b *Broker) SubmitVmList(vms []*Vm) error {
	if len(vms) == 0 {
		return nil
	}
	for _, vm := range vms {
		vm.SetState(VmSubmitted)
	}
	return b.sim.SubmitVMBind(b.dc, vms)
}

// SubmitCloudletList hands a batch of cloudlets to the datacenter's
// waiting queue; each is placed independently as capacity allows
// (spec §4.7 CLOUDLET_SUBMIT/CLOUDLET_BIND).
func (b *Broker) SubmitCloudletList(cloudlets []*Cloudlet) error {
	if len(cloudlets) == 0 {
		return nil
	}
	for _, c := range cloudlets {
		c.SetState(CloudletSubmitted)
	}
	return b.sim.SubmitCloudletSubmit(b.dc, cloudlets)
}
