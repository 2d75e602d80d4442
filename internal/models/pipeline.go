package models

import "time"

// Pipeline run outcomes
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusWarning   = "warning"
	RunStatusFailed    = "failed"
)

// Run trigger origins
const (
	RunTriggerScheduled = "scheduled"
	RunTriggerManual    = "manual"
)

// PipelineRun is one execution record, immutable once finalized
type PipelineRun struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	Status          string     `json:"status"`
	ItemsFetched    int        `json:"items_fetched"`
	ItemsNew        int        `json:"items_new"`
	ItemsSummarized int        `json:"items_summarized"`
	Errors          int        `json:"errors"`
	Trigger         string     `json:"trigger"`
}

// PipelineStatus is a live snapshot of the pipeline, the only state the
// run controller polls
type PipelineStatus struct {
	IsRunning       bool       `json:"is_running"`
	LastRunAt       *time.Time `json:"last_run_at"`
	LastRunStatus   *string    `json:"last_run_status"`
	LastRunItemsNew *int       `json:"last_run_items_new"`
	NextRunAt       *time.Time `json:"next_run_at"`
}
