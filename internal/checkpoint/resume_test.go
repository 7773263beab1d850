package checkpoint

import (
	"strings"
	"testing"

	"github.com/lamim/promptforge/pkg/models"
)

func TestValidateCheckpoint(t *testing.T) {
	cfg := testConfig(true, 1)
	hash := ComputeConfigHash(cfg, "variants", "seeds")

	tests := []struct {
		name    string
		cp      *models.Checkpoint
		wantErr string
	}{
		{
			name: "valid",
			cp:   &models.Checkpoint{Command: "variants", ConfigHash: hash},
		},
		{
			name:    "other command",
			cp:      &models.Checkpoint{Command: "scenario", ConfigHash: hash},
			wantErr: "command",
		},
		{
			name:    "hash mismatch",
			cp:      &models.Checkpoint{Command: "variants", ConfigHash: "deadbeef"},
			wantErr: "config mismatch",
		},
		{
			name:    "already complete",
			cp:      &models.Checkpoint{Command: "variants", ConfigHash: hash, Complete: true},
			wantErr: "already complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckpoint(tt.cp, cfg, "variants", "seeds")
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPendingKeys(t *testing.T) {
	cp := &models.Checkpoint{CompletedJobs: map[string]int{"b": 1}}

	pending := PendingKeys(cp, []string{"a", "b", "c"})
	if len(pending) != 2 || pending[0] != "a" || pending[1] != "c" {
		t.Errorf("PendingKeys = %v", pending)
	}
}

func TestGetProgressPercentage(t *testing.T) {
	cp := &models.Checkpoint{CompletedJobs: map[string]int{"a": 1, "b": 2}}

	if got := GetProgressPercentage(cp, 4); got != 50.0 {
		t.Errorf("Expected 50%%, got %.1f", got)
	}
	if got := GetProgressPercentage(cp, 0); got != 0.0 {
		t.Errorf("Expected 0%% for empty run, got %.1f", got)
	}
	if GetCompletedCount(cp) != 2 {
		t.Errorf("Expected 2 completed, got %d", GetCompletedCount(cp))
	}
}
