package pipeline

import (
	"time"
)

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// RunReport tracks a single end-to-end execution. One run reads the full
// input snapshot and overwrites the full output snapshot; nothing is
// incremental.
type RunReport struct {
	RunID        string
	Status       RunStatus
	StartedAt    time.Time
	CompletedAt  time.Time
	ErrorMessage string

	Products           int
	Transactions       int
	ValidationWarnings int

	// FallbackProducts lists product IDs whose forecast came from the
	// fallback model rather than the configured primary.
	FallbackProducts []string
	// ProductErrors maps product IDs to the per-product error that excluded
	// them from the reorder output. These never fail the run.
	ProductErrors map[string]string
}

// Duration returns the wall-clock time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
