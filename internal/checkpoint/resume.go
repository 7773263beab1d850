package checkpoint

import (
	"fmt"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/pkg/models"
)

// ValidateCheckpoint verifies checkpoint is compatible with the current run
func ValidateCheckpoint(cp *models.Checkpoint, cfg *config.Config, command, scope string) error {
	if cp.Command != command {
		return fmt.Errorf("checkpoint belongs to the %q command, not %q", cp.Command, command)
	}

	expectedHash := ComputeConfigHash(cfg, command, scope)
	if cp.ConfigHash != expectedHash {
		return fmt.Errorf("checkpoint config mismatch: checkpoint was created with different inputs or settings (hash: %s vs %s)", cp.ConfigHash, expectedHash)
	}

	if cp.Complete {
		return fmt.Errorf("checkpoint is already complete, nothing to resume")
	}

	return nil
}

// PendingKeys returns the keys that are not completed yet, in order
func PendingKeys(cp *models.Checkpoint, keys []string) []string {
	var pending []string
	for _, k := range keys {
		if _, done := cp.CompletedJobs[k]; !done {
			pending = append(pending, k)
		}
	}
	return pending
}

// GetCompletedCount returns the number of completed jobs
func GetCompletedCount(cp *models.Checkpoint) int {
	return len(cp.CompletedJobs)
}

// GetProgressPercentage returns completion percentage out of total jobs
func GetProgressPercentage(cp *models.Checkpoint, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(GetCompletedCount(cp)) / float64(total) * 100.0
}
