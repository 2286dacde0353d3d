package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrityScan verifies posted journal entries still balance and
	// that every posted entry falls inside its recorded period.
	TaskGLIntegrityScan = "ledger:integrity_scan"
	// TaskPeriodClosed fans out notifications after a period close.
	TaskPeriodClosed = "ledger:period_closed"
)

// GLIntegrityPayload scopes an integrity scan. A zero QuarryID scans every
// quarry.
type GLIntegrityPayload struct {
	QuarryID int64 `json:"quarry_id"`
}

// NewGLIntegrityTask constructs an Asynq task for the integrity scan.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrityScan, data), nil
}

// PeriodClosedPayload carries the identity of a freshly closed period.
type PeriodClosedPayload struct {
	PeriodID     int64     `json:"period_id"`
	QuarryID     int64     `json:"quarry_id"`
	FiscalYear   int       `json:"fiscal_year"`
	PeriodNumber int       `json:"period_number"`
	ClosedAt     time.Time `json:"closed_at"`
}

// NewPeriodClosedTask constructs an Asynq task announcing a period close.
func NewPeriodClosedTask(payload PeriodClosedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPeriodClosed, data), nil
}
