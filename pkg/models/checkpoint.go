package models

import "time"

// Checkpoint represents the saved state of a generation run.
// Jobs are keyed by a stable string (seed index or cut key).
type Checkpoint struct {
	RunID       string    `json:"run_id"`
	Command     string    `json:"command"` // "variants" or "scenario"
	CreatedAt   time.Time `json:"created_at"`
	LastSavedAt time.Time `json:"last_saved_at"`

	TotalJobs     int            `json:"total_jobs"`
	CompletedJobs map[string]int `json:"completed_jobs"` // job key -> accepted lines
	Complete      bool           `json:"complete"`

	Stats VariantStats `json:"stats"`

	// Configuration snapshot (for validation)
	ConfigHash string `json:"config_hash"`
}
