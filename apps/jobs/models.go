package jobs

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a job execution
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobExecution tracks the execution history of background jobs
type JobExecution struct {
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	JobName          string     `gorm:"size:100;not null;index:idx_job_started,priority:1" json:"job_name"`
	InstanceID       string     `gorm:"size:100;not null" json:"instance_id"`
	Status           JobStatus  `gorm:"size:20;not null;default:running" json:"status"`
	StartedAt        time.Time  `gorm:"not null;index:idx_job_started,priority:2" json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	DurationMs       int64      `gorm:"default:0" json:"duration_ms"`
	RecordsProcessed int        `gorm:"default:0" json:"records_processed"`
	Error            string     `gorm:"type:text" json:"error,omitempty"`
}

// TableName returns the table name for JobExecution
func (JobExecution) TableName() string {
	return "job_executions"
}

// JobHandler is the function executed on each scheduled run. Handlers must
// check ctx.Done between units of work: each unit is independently
// idempotent, so safe cancellation only requires not starting new units.
type JobHandler func(ctx *Context) error

// JobDefinition defines a scheduled job
type JobDefinition struct {
	Name        string        // Unique job name
	Description string        // Human-readable description
	Schedule    string        // Cron expression (with seconds field)
	Timeout     time.Duration // Per-run timeout, 0 means none
	Enabled     bool
	Handler     JobHandler
}
