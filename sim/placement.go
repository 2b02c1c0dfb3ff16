// Max-fit placement policies (spec §4.6, C5). Both the VM→host and
// cloudlet→VM policies share one shape: score every source against the
// current target, reheapify, pop the best match, bind it (mutating real
// objects), and on the first unplaceable target roll every prior bind
// back. This is the try/rollback transaction design note §9 calls for —
// no deep-copy-then-replay.
package sim

// hostSuitability scores a Host's fitness for the VM currently being
// placed. Re-computable against any VM via updateForVM.
type hostSuitability struct {
	host      *Host
	suitable  bool
}

func (s *hostSuitability) updateForVM(vm *VmRunning) {
	s.suitable = s.host.fitsVM(vm)
}

// lessHostSuitability ranks suitable entries ahead of unsuitable ones;
// among suitable entries, larger available PE count comes first
// (max-fit), ties broken by smaller numeric id (spec §4.6).
func lessHostSuitability(a, b *hostSuitability) bool {
	if a.suitable != b.suitable {
		return a.suitable
	}
	if !a.suitable {
		return false
	}
	if a.host.NumPesAvailable() != b.host.NumPesAvailable() {
		return a.host.NumPesAvailable() > b.host.NumPesAvailable()
	}
	return a.host.NumericID() < b.host.NumericID()
}

// VmPlacementMaxFit places a batch of VM descriptors onto hosts,
// all-or-nothing.
type VmPlacementMaxFit struct{}

// NewVmPlacementMaxFit constructs the VM→host max-fit policy.
func NewVmPlacementMaxFit() *VmPlacementMaxFit { return &VmPlacementMaxFit{} }

// TryToPlace implements spec §4.6's try_to_place(sources, targets) for
// VM descriptors: builds a min-heap of host suitability records, and for
// each VM (in input order) rescores every host, reheapifies, pops the
// best fit, and binds. On the first unplaceable VM, every prior bind is
// rolled back via Host.releaseVM and (false, nil) is returned.
func (p *VmPlacementMaxFit) TryToPlace(hosts []*Host, vms []*Vm) (bool, []*VmRunning) {
	if len(hosts) == 0 {
		return false, nil
	}

	h := NewHeap(lessHostSuitability)
	for _, host := range hosts {
		h.Push(&hostSuitability{host: host})
	}

	placed := make([]*VmRunning, 0, len(vms))
	ok := true
	for _, vm := range vms {
		vmRunning := NewVmRunning(vm)
		for i := 0; i < h.Len(); i++ {
			h.At(i).updateForVM(vmRunning)
		}
		h.Reheapify()
		best, err := h.Pop()
		if err != nil {
			ok = false
			break
		}
		if !best.suitable {
			ok = false
			break
		}
		if err := best.host.bindVM(vmRunning); err != nil {
			panic("cloudsim: suitability said fit but bindVM failed: " + err.Error())
		}
		placed = append(placed, vmRunning)
		h.Push(best)
	}

	if !ok {
		for _, vmRunning := range placed {
			host := vmRunning.Host()
			if err := host.releaseVM(vmRunning); err != nil {
				panic("cloudsim: rollback releaseVM failed: " + err.Error())
			}
		}
		return false, nil
	}
	return true, placed
}

// vmSuitability scores a VmRunning's fitness for the cloudlet currently
// being placed.
type vmSuitability struct {
	vmRunning *VmRunning
	suitable  bool
}

func (s *vmSuitability) updateForCloudlet(c *CloudletRunning) {
	s.suitable = s.vmRunning.fitsCloudlet(c)
}

func lessVmSuitability(a, b *vmSuitability) bool {
	if a.suitable != b.suitable {
		return a.suitable
	}
	if !a.suitable {
		return false
	}
	if a.vmRunning.NumPesAvailable() != b.vmRunning.NumPesAvailable() {
		return a.vmRunning.NumPesAvailable() > b.vmRunning.NumPesAvailable()
	}
	return a.vmRunning.NumericID() < b.vmRunning.NumericID()
}

// CloudletPlacementMaxFit places a batch of cloudlets onto VMs,
// all-or-nothing per invocation. The Datacenter calls this one cloudlet
// at a time from the head of the waiting queue (spec §4.6/§4.7) to get
// "schedule as many as fit" semantics.
type CloudletPlacementMaxFit struct{}

// NewCloudletPlacementMaxFit constructs the cloudlet→VM max-fit policy.
func NewCloudletPlacementMaxFit() *CloudletPlacementMaxFit { return &CloudletPlacementMaxFit{} }

// TryToPlace implements spec §4.6's try_to_place(sources, targets) for
// cloudlets.
func (p *CloudletPlacementMaxFit) TryToPlace(vms []*VmRunning, cloudlets []*CloudletRunning) (bool, []*CloudletRunning) {
	if len(vms) == 0 {
		return false, nil
	}

	h := NewHeap(lessVmSuitability)
	for _, vm := range vms {
		h.Push(&vmSuitability{vmRunning: vm})
	}

	placed := make([]*CloudletRunning, 0, len(cloudlets))
	ok := true
	for _, c := range cloudlets {
		for i := 0; i < h.Len(); i++ {
			h.At(i).updateForCloudlet(c)
		}
		h.Reheapify()
		best, err := h.Pop()
		if err != nil {
			ok = false
			break
		}
		if !best.suitable {
			ok = false
			break
		}
		if err := best.vmRunning.bindCloudlet(c); err != nil {
			panic("cloudsim: suitability said fit but bindCloudlet failed: " + err.Error())
		}
		placed = append(placed, c)
		h.Push(best)
	}

	if !ok {
		for _, c := range placed {
			vm := c.VmRunning()
			if err := vm.releaseCloudlet(c); err != nil {
				panic("cloudsim: rollback releaseCloudlet failed: " + err.Error())
			}
		}
		return false, nil
	}
	return true, placed
}
