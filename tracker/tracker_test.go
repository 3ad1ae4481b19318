//go:build unit
// +build unit

package tracker

import (
	"testing"
	"time"

	"github.com/qubera-team/qubera-client/core"
	"github.com/stretchr/testify/assert"
)

func setUpTracker(t *testing.T) *CostTracker {
	t.Helper()
	c := &CostTracker{}
	assert.Nil(t, c.Setup(&core.Conf{}))
	return c
}

func qpuDevice() *core.DeviceInfo {
	return &core.DeviceInfo{
		DeviceID: "qubera.test.qpu",
		Paradigm: core.ParadigmQPU,
		Pricing:  core.Pricing{PerTask: 0.3, PerShot: 0.00035},
	}
}

func simulatorDevice() *core.DeviceInfo {
	return &core.DeviceInfo{
		DeviceID: "qubera.test.dm1",
		Paradigm: core.ParadigmDMSimulator,
		Pricing:  core.Pricing{PerMinute: 0.075},
	}
}

func chargedTask(id string, shots int, billed time.Duration) *core.TaskData {
	td := core.NewTaskData()
	td.ID = id
	td.Shots = shots
	td.Status = core.COMPLETED
	td.Result.BilledDuration = billed
	return td
}

func TestChargeQPUPerTaskAndShot(t *testing.T) {
	c := setUpTracker(t)
	c.Charge(chargedTask("t1", 1000, 2*time.Second), qpuDevice())

	summary := c.Summary()
	assert.InDelta(t, 0.3+0.35, summary.Total, 1e-9)
	dc := summary.ByDevice["qubera.test.qpu"]
	assert.Equal(t, 1, dc.Tasks)
	assert.Equal(t, uint64(1000), dc.Shots)
	assert.Equal(t, 2*time.Second, dc.BilledDuration)
}

func TestChargeSimulatorPerMinute(t *testing.T) {
	c := setUpTracker(t)
	c.Charge(chargedTask("t1", 0, 4*time.Second), simulatorDevice())

	summary := c.Summary()
	assert.InDelta(t, 0.075*4.0/60.0, summary.Total, 1e-9)
	assert.Equal(t, 4*time.Second, summary.ByDevice["qubera.test.dm1"].BilledDuration)
}

func TestChargeSimulatorMinimumBilledDuration(t *testing.T) {
	c := setUpTracker(t)
	c.Charge(chargedTask("t1", 0, 200*time.Millisecond), simulatorDevice())

	summary := c.Summary()
	assert.InDelta(t, 0.075*3.0/60.0, summary.Total, 1e-9)
	assert.Equal(t, 3*time.Second, summary.ByDevice["qubera.test.dm1"].BilledDuration)
}

func TestChargeQPUKeepsRawBilledDuration(t *testing.T) {
	c := setUpTracker(t)
	c.Charge(chargedTask("t1", 100, 200*time.Millisecond), qpuDevice())

	summary := c.Summary()
	assert.Equal(t, 200*time.Millisecond, summary.ByDevice["qubera.test.qpu"].BilledDuration)
}

func TestSummaryAggregatesDevices(t *testing.T) {
	c := setUpTracker(t)
	c.Charge(chargedTask("t1", 1000, time.Second), qpuDevice())
	c.Charge(chargedTask("t2", 2000, time.Second), qpuDevice())
	c.Charge(chargedTask("t3", 0, time.Minute), simulatorDevice())

	summary := c.Summary()
	assert.Len(t, summary.ByDevice, 2)

	qpu := summary.ByDevice["qubera.test.qpu"]
	assert.Equal(t, 2, qpu.Tasks)
	assert.Equal(t, uint64(3000), qpu.Shots)
	assert.InDelta(t, 0.6+0.00035*3000, qpu.Cost, 1e-9)

	sim := summary.ByDevice["qubera.test.dm1"]
	assert.Equal(t, 1, sim.Tasks)
	assert.InDelta(t, 0.075, sim.Cost, 1e-9)

	assert.InDelta(t, qpu.Cost+sim.Cost, summary.Total, 1e-9)
}

func TestSummaryOfEmptyTracker(t *testing.T) {
	c := setUpTracker(t)
	summary := c.Summary()
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.ByDevice)
}
