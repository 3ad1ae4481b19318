package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qubera-team/qubera-client/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Simulators bill per minute with a minimum billed duration per task.
const minSimulatorBilledDuration = 3 * time.Second

// CostTracker mirrors the service-side billing the client cannot see. Every
// fetched task is charged once against its device's advertised pricing: QPUs
// bill per task plus per shot, simulators per billed minute.
type CostTracker struct {
	mu       sync.Mutex
	byDevice map[string]core.DeviceCost

	taskCounter metric.Int64Counter
	shotCounter metric.Int64Counter
	costCounter metric.Float64Counter
	billedHist  metric.Float64Histogram
}

func (c *CostTracker) Setup(conf *core.Conf) error {
	c.byDevice = make(map[string]core.DeviceCost)
	meter := otel.Meter("tracker")
	var err error
	c.taskCounter, err = meter.Int64Counter("qubera.tasks.charged",
		metric.WithDescription("tasks charged to the cost tracker"))
	if err != nil {
		return fmt.Errorf("failed to create the task counter/reason:%s", err)
	}
	c.shotCounter, err = meter.Int64Counter("qubera.shots",
		metric.WithDescription("shots executed on remote devices"))
	if err != nil {
		return fmt.Errorf("failed to create the shot counter/reason:%s", err)
	}
	c.costCounter, err = meter.Float64Counter("qubera.cost",
		metric.WithDescription("estimated cost of charged tasks"),
		metric.WithUnit("USD"))
	if err != nil {
		return fmt.Errorf("failed to create the cost counter/reason:%s", err)
	}
	c.billedHist, err = meter.Float64Histogram("qubera.billed_duration",
		metric.WithDescription("billed duration per charged task"),
		metric.WithUnit("s"))
	if err != nil {
		return fmt.Errorf("failed to create the billed duration histogram/reason:%s", err)
	}
	return nil
}

func (c *CostTracker) Charge(td *core.TaskData, di *core.DeviceInfo) {
	billed := td.Result.BilledDuration
	simulator := di.Paradigm != core.ParadigmQPU
	if simulator && billed < minSimulatorBilledDuration {
		billed = minSimulatorBilledDuration
	}
	var cost float64
	if simulator {
		cost = di.Pricing.PerMinute * billed.Minutes()
	} else {
		cost = di.Pricing.PerTask + di.Pricing.PerShot*float64(td.Shots)
	}

	c.mu.Lock()
	dc := c.byDevice[di.DeviceID]
	dc.Tasks++
	dc.Shots += uint64(td.Shots)
	dc.BilledDuration += billed
	dc.Cost += cost
	c.byDevice[di.DeviceID] = dc
	c.mu.Unlock()

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("device_id", di.DeviceID))
	c.taskCounter.Add(ctx, 1, attrs)
	c.shotCounter.Add(ctx, int64(td.Shots), attrs)
	c.costCounter.Add(ctx, cost, attrs)
	c.billedHist.Record(ctx, billed.Seconds(), attrs)

	zap.L().Debug(fmt.Sprintf("charged a task(%s) on device(%s). cost:%f, billed:%s",
		td.ID, di.DeviceID, cost, billed))
}

func (c *CostTracker) Summary() core.CostSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary := core.CostSummary{
		ByDevice: make(map[string]core.DeviceCost, len(c.byDevice)),
	}
	for id, dc := range c.byDevice {
		summary.ByDevice[id] = dc
		summary.Total += dc.Cost
	}
	return summary
}
