package sim

import (
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Datacenter owns all running state (spec §4.7, C6): hosts, VMs
// partitioned by phase, the cloudlet waiting queue, and the two
// max-fit placement policies. It is the sole mutator of host/VM/cloudlet
// state once a placement policy has been handed live objects to bind.
type Datacenter struct {
	hosts map[uuid.UUID]*Host

	vmBooting    map[uuid.UUID]*VmRunning
	vmRunningMap map[uuid.UUID]*VmRunning
	vmEndOfLife  map[uuid.UUID]*VmRunning

	cloudletWaiting  []*Cloudlet // FIFO; index 0 is the head
	cloudletRunning  map[uuid.UUID]*CloudletRunning
	cloudletEndOfLife map[uuid.UUID]*CloudletRunning

	vmPlacement       *VmPlacementMaxFit
	cloudletPlacement *CloudletPlacementMaxFit

	log *logrus.Entry
}

// NewDatacenter builds a Datacenter that owns hosts. Each host's
// back-reference is set to this datacenter (spec §3 Host "back-reference
// to owning datacenter").
func NewDatacenter(hosts []*Host, logger *logrus.Entry) *Datacenter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	dc := &Datacenter{
		hosts:             make(map[uuid.UUID]*Host, len(hosts)),
		vmBooting:         make(map[uuid.UUID]*VmRunning),
		vmRunningMap:      make(map[uuid.UUID]*VmRunning),
		vmEndOfLife:       make(map[uuid.UUID]*VmRunning),
		cloudletRunning:   make(map[uuid.UUID]*CloudletRunning),
		cloudletEndOfLife: make(map[uuid.UUID]*CloudletRunning),
		vmPlacement:       NewVmPlacementMaxFit(),
		cloudletPlacement: NewCloudletPlacementMaxFit(),
		log:               logger.WithField("component", "datacenter"),
	}
	for _, host := range hosts {
		host.setDatacenter(dc)
		dc.hosts[host.ID()] = host
	}
	return dc
}

// HostRunningDict returns the datacenter's hosts keyed by id (spec §6
// accessor host_running_dict).
func (dc *Datacenter) HostRunningDict() map[uuid.UUID]*Host { return dc.hosts }

// VmRunningDict returns the VMs currently RUNNING, keyed by id (spec §6
// accessor vm_running_dict).
func (dc *Datacenter) VmRunningDict() map[uuid.UUID]*VmRunning { return dc.vmRunningMap }

// CloudletWaitingQueue returns the FIFO of cloudlets not yet bound to a
// VM, head first (spec §6 accessor cloudlet_waiting_deque).
func (dc *Datacenter) CloudletWaitingQueue() []*Cloudlet {
	return append([]*Cloudlet(nil), dc.cloudletWaiting...)
}

// VmBootingDict returns the VMs bound to a host but not yet booted.
func (dc *Datacenter) VmBootingDict() map[uuid.UUID]*VmRunning { return dc.vmBooting }

// VmEndOfLifeDict returns VMs that have reached DESTROYED/CANCELED/FAILED.
func (dc *Datacenter) VmEndOfLifeDict() map[uuid.UUID]*VmRunning { return dc.vmEndOfLife }

// CloudletRunningDict returns cloudlets currently bound and executing.
func (dc *Datacenter) CloudletRunningDict() map[uuid.UUID]*CloudletRunning { return dc.cloudletRunning }

// CloudletEndOfLifeDict returns cloudlets that reached a terminal state.
func (dc *Datacenter) CloudletEndOfLifeDict() map[uuid.UUID]*CloudletRunning {
	return dc.cloudletEndOfLife
}

// Process implements Handler: dispatch by event type (spec §4.7).
func (dc *Datacenter) Process(s *Simulator, ev Event) {
	switch e := ev.(type) {
	case *VMBindEvent:
		dc.processVMBind(s, e)
	case *VMBootupEvent:
		dc.processVMBootup(s, e)
	case *VMShutdownEvent:
		dc.processVMShutdown(s, e)
	case *VMDestroyEvent:
		dc.processVMDestroy(s, e)
	case *VMFailEvent:
		// reserved no-op stub (spec §4.7)
	case *CloudletSubmitEvent:
		dc.processCloudletSubmit(s, e)
	case *CloudletBindEvent:
		dc.processCloudletBind(s, e)
	case *CloudletFinishEvent:
		dc.processCloudletFinish(s, e)
	case *CloudletFailEvent:
		// reserved no-op stub (spec §4.7)
	case *HostAddEvent, *HostRemoveEvent, *HostPoweronEvent, *HostPoweroffEvent:
		// reserved no-op stubs (spec §4.7)
	}
}

// processVMBind runs VM placement over all hosts, all-or-nothing
// (spec §4.7 VM_BIND).
func (dc *Datacenter) processVMBind(s *Simulator, e *VMBindEvent) {
	dc.log.WithField("time", s.Clock()).Debug("trying to bind vm batch to host")

	hosts := make([]*Host, 0, len(dc.hosts))
	for _, h := range dc.hosts {
		hosts = append(hosts, h)
	}

	ok, placed := dc.vmPlacement.TryToPlace(hosts, e.VMs)
	if !ok {
		for _, vm := range e.VMs {
			vm.SetState(VmCanceled)
			dc.vmEndOfLife[vm.ID()] = NewVmRunning(vm)
		}
		dc.log.WithField("time", s.Clock()).Warn("failed to bind vm batch: no suitable host combination")
		return
	}

	for _, vmRunning := range placed {
		dc.vmBooting[vmRunning.ID()] = vmRunning
		vmRunning.SetState(VmBounded)
		s.Submit(newVMBootupEvent(s, s.Clock()+vmRunning.StartupDelay(), dc, vmRunning))
		dc.log.WithFields(logrus.Fields{
			"time": s.Clock(),
			"vm":   vmRunning.NumericID(),
			"host": vmRunning.Host().NumericID(),
		}).Info("bound vm to host")
	}
}

// processVMBootup moves a VM from booting to running and kicks a
// CLOUDLET_BIND to drain the waiting queue (spec §4.7 VM_BOOTUP).
func (dc *Datacenter) processVMBootup(s *Simulator, e *VMBootupEvent) {
	vm := e.VM
	vm.SetState(VmRunningState)
	delete(dc.vmBooting, vm.ID())
	dc.vmRunningMap[vm.ID()] = vm
	dc.log.WithFields(logrus.Fields{"time": s.Clock(), "vm": vm.NumericID()}).Info("vm booted up")
	s.Submit(newCloudletBindEvent(s, s.Clock(), dc))
}

// processCloudletSubmit pushes a batch of cloudlets to the tail of the
// waiting queue and kicks a CLOUDLET_BIND (spec §4.7 CLOUDLET_SUBMIT).
func (dc *Datacenter) processCloudletSubmit(s *Simulator, e *CloudletSubmitEvent) {
	for _, c := range e.Cloudlets {
		dc.cloudletWaiting = append(dc.cloudletWaiting, c)
		dc.log.WithFields(logrus.Fields{"time": s.Clock(), "cloudlet": c.NumericID()}).Info("cloudlet submitted")
	}
	s.Submit(newCloudletBindEvent(s, s.Clock(), dc))
}

// processCloudletBind drains the waiting queue FIFO-first: pop the head,
// try to place it on any running non-shutting-down VM; if it fits,
// schedule CLOUDLET_FINISH; if not, push back to the head and stop
// (spec §4.7 CLOUDLET_BIND, §9 "as many as fit").
func (dc *Datacenter) processCloudletBind(s *Simulator, e *CloudletBindEvent) {
	for len(dc.cloudletWaiting) > 0 {
		cloudlet := dc.cloudletWaiting[0]
		dc.cloudletWaiting = dc.cloudletWaiting[1:]

		candidates := make([]*VmRunning, 0, len(dc.vmRunningMap))
		for _, vm := range dc.vmRunningMap {
			if !vm.IsScheduledToShutdown() {
				candidates = append(candidates, vm)
			}
		}

		ok, placed := dc.cloudletPlacement.TryToPlace(candidates, []*CloudletRunning{NewCloudletRunning(cloudlet)})
		if !ok {
			dc.log.WithFields(logrus.Fields{"time": s.Clock(), "cloudlet": cloudlet.NumericID()}).
				Warn("no suitable vm for cloudlet, retrying when resources free up")
			dc.cloudletWaiting = append([]*Cloudlet{cloudlet}, dc.cloudletWaiting...)
			break
		}

		for _, cloudletRunning := range placed {
			cloudletRunning.SetState(CloudletRunningState)
			vmRunning := cloudletRunning.VmRunning()
			dc.cloudletRunning[cloudletRunning.ID()] = cloudletRunning
			cloudletRunning.SetStartTime(s.Clock())
			mips := vmRunning.GetMips()
			execTime := round2(cloudletRunning.LengthMI() / (mips * cloudletRunning.UtilizationPE()))
			s.Submit(newCloudletFinishEvent(s, s.Clock()+execTime, dc, cloudletRunning))
			dc.log.WithFields(logrus.Fields{
				"time":     s.Clock(),
				"cloudlet": cloudletRunning.NumericID(),
				"vm":       vmRunning.NumericID(),
			}).Info("bound cloudlet to vm")
		}
	}
}

// processCloudletFinish records completion, releases the cloudlet from
// its VM, and — if the VM is scheduled to shut down and now idle —
// enqueues VM_SHUTDOWN (spec §4.7 CLOUDLET_FINISH, S4).
func (dc *Datacenter) processCloudletFinish(s *Simulator, e *CloudletFinishEvent) {
	cloudletRunning := e.Cloudlet
	cloudletRunning.SetEndTime(s.Clock())
	delete(dc.cloudletRunning, cloudletRunning.ID())
	vmRunning := dc.vmRunningMap[cloudletRunning.VmRunning().ID()]
	if err := vmRunning.releaseCloudlet(cloudletRunning); err != nil {
		panic("cloudsim: " + err.Error())
	}
	cloudletRunning.SetState(CloudletSucceeded)
	dc.cloudletEndOfLife[cloudletRunning.ID()] = cloudletRunning
	dc.log.WithFields(logrus.Fields{
		"time":     s.Clock(),
		"cloudlet": cloudletRunning.NumericID(),
		"vm":       vmRunning.NumericID(),
	}).Info("cloudlet execution finished")
	s.Submit(newCloudletBindEvent(s, s.Clock(), dc))

	if vmRunning.IsScheduledToShutdown() && vmRunning.CloudletCount() == 0 {
		s.Submit(newVMShutdownEvent(s, s.Clock(), dc, vmRunning))
	}
}

// processVMShutdown fails every cloudlet still bound to the VM, sets the
// VM state SHUTTINGDOWN, and schedules VM_DESTROY after the VM's
// shutdown delay (spec §4.7 VM_SHUTDOWN).
func (dc *Datacenter) processVMShutdown(s *Simulator, e *VMShutdownEvent) {
	vmRunning := e.VM
	dc.log.WithFields(logrus.Fields{"time": s.Clock(), "vm": vmRunning.NumericID()}).Info("vm shutting down")
	vmRunning.SetState(VmShuttingDown)

	bound := make([]*CloudletRunning, 0, vmRunning.CloudletCount())
	for _, c := range vmRunning.cloudlets {
		bound = append(bound, c)
	}
	for _, cloudletRunning := range bound {
		cloudletRunning.SetEndTime(s.Clock())
		if err := vmRunning.releaseCloudlet(cloudletRunning); err != nil {
			panic("cloudsim: " + err.Error())
		}
		cloudletRunning.SetState(CloudletFailedState)
		delete(dc.cloudletRunning, cloudletRunning.ID())
		dc.cloudletEndOfLife[cloudletRunning.ID()] = cloudletRunning
	}
	s.Submit(newVMDestroyEvent(s, s.Clock()+vmRunning.ShutdownDelay(), dc, vmRunning))
}

// processVMDestroy detaches the VM from its host and moves it to
// end-of-life (spec §4.7 VM_DESTROY).
func (dc *Datacenter) processVMDestroy(s *Simulator, e *VMDestroyEvent) {
	vmRunning := e.VM
	host := vmRunning.Host()
	if err := host.releaseVM(vmRunning); err != nil {
		panic("cloudsim: " + err.Error())
	}
	vmRunning.SetState(VmDestroyed)
	delete(dc.vmRunningMap, vmRunning.ID())
	dc.vmEndOfLife[vmRunning.ID()] = vmRunning
	dc.log.WithFields(logrus.Fields{
		"time": s.Clock(),
		"vm":   vmRunning.NumericID(),
		"host": host.NumericID(),
	}).Info("vm destroyed")
}

// ProcessSimulationTerminate shuts down every running VM and cancels
// every still-waiting cloudlet (spec §4.7 SIMULATION_TERMINATE). Called
// directly by the Simulator, not dispatched through Process, since
// SIMULATION_TERMINATE always targets the Simulator itself.
func (dc *Datacenter) ProcessSimulationTerminate(s *Simulator) {
	for _, vmRunning := range dc.vmRunningMap {
		s.Submit(newVMShutdownEvent(s, s.Clock(), dc, vmRunning))
	}
	for _, cloudlet := range dc.cloudletWaiting {
		cloudlet.SetState(CloudletCanceled)
		dc.cloudletEndOfLife[cloudlet.ID()] = NewCloudletRunning(cloudlet)
	}
	dc.cloudletWaiting = nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
