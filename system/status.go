package system

import "time"

// Status is the lifecycle state of one system invocation. Every invocation
// passes through Pending and Running before reaching a terminal state.
type Status int

const (
	// StatusPending is recorded when the invocation is created, before the
	// body goroutine has been scheduled.
	StatusPending Status = iota
	// StatusRunning is recorded immediately before the system body runs.
	StatusRunning
	// StatusCompleted is the terminal state of a successful invocation.
	StatusCompleted
	// StatusFailed is the terminal state of a failed or cancelled invocation.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is Completed or Failed.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// Invocation is a point-in-time snapshot of one system execution's metadata.
// Snapshots are copies; callers must treat them as eventually consistent with
// concurrent progress.
type Invocation struct {
	ID        uint64        // strictly increasing, never reused
	System    string        // registered system name
	Status    Status        //
	StartedAt time.Time     // when the invocation was created
	Duration  time.Duration // set on Completed
	Reason    string        // set on Failed
}

// Metrics is a cumulative snapshot of executor activity.
type Metrics struct {
	Executions uint64
	Succeeded  uint64
	Failed     uint64
	// PerSystem aggregates counters by system name.
	PerSystem map[string]SystemMetrics
}

// SystemMetrics aggregates counters for a single registered system.
type SystemMetrics struct {
	Executions    uint64
	Succeeded     uint64
	Failed        uint64
	TotalDuration time.Duration
}
