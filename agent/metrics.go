package agent

import (
	"sync"
	"time"
)

// Metrics is a point-in-time snapshot of loop activity. The system counters
// mirror the executor's cumulative totals at snapshot time.
type Metrics struct {
	EventsReceived   uint64    `json:"events_received"`
	EventsProcessed  uint64    `json:"events_processed"`
	EventsExpired    uint64    `json:"events_expired"`
	ActionsApplied   uint64    `json:"actions_applied"`
	StrategyFailures uint64    `json:"strategy_failures"`
	SystemsExecuted  uint64    `json:"systems_executed"`
	SystemsSucceeded uint64    `json:"systems_succeeded"`
	SystemsFailed    uint64    `json:"systems_failed"`
	StartedAt        time.Time `json:"started_at"`
	LastEventAt      time.Time `json:"last_event_at"`
}

// metricsCollector accumulates loop counters under a mutex. Snapshot copies
// are cheap so no atomics are needed.
type metricsCollector struct {
	mu sync.Mutex
	m  Metrics
}

func (c *metricsCollector) markStart(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = Metrics{StartedAt: t}
}

func (c *metricsCollector) received(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.EventsReceived++
	c.m.LastEventAt = t
}

func (c *metricsCollector) processed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.EventsProcessed++
}

func (c *metricsCollector) expired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.EventsExpired++
}

func (c *metricsCollector) actions(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.ActionsApplied += uint64(n)
}

func (c *metricsCollector) strategyFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.StrategyFailures++
}

func (c *metricsCollector) snapshot() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m
}
