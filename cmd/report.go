package cmd

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	sim "github.com/cloudsim/cloudsim/sim"
)

// ScenarioReport aggregates end-of-run statistics for a Datacenter. Useful
// for evaluating placement quality and sizing decisions across scenarios.
type ScenarioReport struct {
	CloudletsSucceeded int
	CloudletsFailed    int
	CloudletsCanceled  int
	VmsDestroyed       int
	VmsCanceled        int

	MeanTurnaround   float64
	StddevTurnaround float64
}

// BuildScenarioReport walks a Datacenter's end-of-life maps and computes
// turnaround-time statistics over succeeded cloudlets.
func BuildScenarioReport(dc *sim.Datacenter) *ScenarioReport {
	r := &ScenarioReport{}
	turnarounds := make([]float64, 0, len(dc.CloudletEndOfLifeDict()))

	for _, c := range dc.CloudletEndOfLifeDict() {
		switch c.State() {
		case sim.CloudletSucceeded:
			r.CloudletsSucceeded++
			turnarounds = append(turnarounds, c.EndTime()-c.StartTime())
		case sim.CloudletFailedState:
			r.CloudletsFailed++
		case sim.CloudletCanceled:
			r.CloudletsCanceled++
		}
	}
	for _, v := range dc.VmEndOfLifeDict() {
		switch v.State() {
		case sim.VmDestroyed:
			r.VmsDestroyed++
		case sim.VmCanceled:
			r.VmsCanceled++
		}
	}

	if len(turnarounds) > 0 {
		r.MeanTurnaround = stat.Mean(turnarounds, nil)
		r.StddevTurnaround = stat.StdDev(turnarounds, nil)
	}
	return r
}

// Print displays the report on stdout, in the teacher's terse
// end-of-simulation summary style.
func (r *ScenarioReport) Print(finalClock float64) {
	fmt.Println("=== Scenario Report ===")
	fmt.Printf("Final clock            : %.2f\n", finalClock)
	fmt.Printf("Cloudlets succeeded     : %d\n", r.CloudletsSucceeded)
	fmt.Printf("Cloudlets failed        : %d\n", r.CloudletsFailed)
	fmt.Printf("Cloudlets canceled      : %d\n", r.CloudletsCanceled)
	fmt.Printf("VMs destroyed           : %d\n", r.VmsDestroyed)
	fmt.Printf("VMs canceled            : %d\n", r.VmsCanceled)
	if r.CloudletsSucceeded > 0 {
		fmt.Printf("Mean turnaround time    : %.2f\n", r.MeanTurnaround)
		fmt.Printf("Stddev turnaround time  : %.2f\n", r.StddevTurnaround)
	}
}
