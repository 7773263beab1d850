package checkpoint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/pkg/models"
)

const CheckpointFilename = "checkpoint.json"

// Manager records completed jobs (seeds or cuts) of one run. Writes are
// synchronous and atomic.
type Manager struct {
	dir        string
	checkpoint *models.Checkpoint
	mu         sync.RWMutex
	logger     *slog.Logger
	interval   int // Save every N jobs
	jobCounter int // Counter since last save
	enabled    bool
}

// NewManager creates a manager for a fresh run. scope identifies the work
// list (seeds or cut plan) so a resume against different inputs is refused.
func NewManager(dir, command, scope string, cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		dir: dir,
		checkpoint: &models.Checkpoint{
			RunID:         uuid.New().String(),
			Command:       command,
			CreatedAt:     time.Now(),
			CompletedJobs: make(map[string]int),
			ConfigHash:    ComputeConfigHash(cfg, command, scope),
		},
		logger:   logger,
		interval: max(1, cfg.Generation.CheckpointInterval),
		enabled:  cfg.Generation.EnableCheckpointing,
	}
}

// NewManagerFromCheckpoint continues an existing checkpoint
func NewManagerFromCheckpoint(dir string, cp *models.Checkpoint, cfg *config.Config, logger *slog.Logger) *Manager {
	if cp.CompletedJobs == nil {
		cp.CompletedJobs = make(map[string]int)
	}
	return &Manager{
		dir:        dir,
		checkpoint: cp,
		logger:     logger,
		interval:   max(1, cfg.Generation.CheckpointInterval),
		enabled:    true,
	}
}

// Path returns the checkpoint file path
func (m *Manager) Path() string {
	return filepath.Join(m.dir, CheckpointFilename)
}

// Save writes the checkpoint to disk
func (m *Manager) Save() error {
	if !m.enabled {
		return nil
	}

	m.mu.Lock()
	m.checkpoint.LastSavedAt = time.Now()
	cpCopy := m.copyCheckpoint()
	m.mu.Unlock()

	return m.writeCheckpointToDisk(cpCopy)
}

func (m *Manager) writeCheckpointToDisk(cp *models.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// Atomic write: write to temp file, then rename
	checkpointPath := m.Path()
	tempPath := checkpointPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp checkpoint: %w", err)
	}

	if err := os.Rename(tempPath, checkpointPath); err != nil {
		return fmt.Errorf("failed to rename checkpoint: %w", err)
	}

	m.logger.Debug("Checkpoint saved", "path", checkpointPath, "completed_jobs", len(cp.CompletedJobs))
	return nil
}

// copyCheckpoint creates a deep copy of the checkpoint
func (m *Manager) copyCheckpoint() *models.Checkpoint {
	cp := *m.checkpoint
	cp.CompletedJobs = make(map[string]int, len(m.checkpoint.CompletedJobs))
	for k, v := range m.checkpoint.CompletedJobs {
		cp.CompletedJobs[k] = v
	}
	return &cp
}

// Load reads a checkpoint from dir
func Load(dir string, logger *slog.Logger) (*models.Checkpoint, error) {
	checkpointPath := filepath.Join(dir, CheckpointFilename)

	data, err := os.ReadFile(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp models.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	logger.Info("Checkpoint loaded",
		"run_id", cp.RunID,
		"command", cp.Command,
		"completed_jobs", len(cp.CompletedJobs))

	return &cp, nil
}

// IsDone reports whether the job was completed by this or an earlier run
func (m *Manager) IsDone(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.checkpoint.CompletedJobs[key]
	return ok
}

// MarkDone records a finished job and saves every interval jobs
func (m *Manager) MarkDone(key string, accepted int, stats models.VariantStats) error {
	if !m.enabled {
		return nil
	}

	m.mu.Lock()
	m.checkpoint.CompletedJobs[key] = accepted
	m.checkpoint.Stats.Add(stats)
	m.jobCounter++
	shouldSave := m.jobCounter >= m.interval
	if shouldSave {
		m.jobCounter = 0
	}
	m.mu.Unlock()

	if shouldSave {
		return m.Save()
	}
	return nil
}

// SetTotalJobs records the size of the work list
func (m *Manager) SetTotalJobs(n int) {
	m.mu.Lock()
	m.checkpoint.TotalJobs = n
	m.mu.Unlock()
}

// MarkComplete marks the whole run as complete and saves
func (m *Manager) MarkComplete() error {
	m.mu.Lock()
	m.checkpoint.Complete = true
	m.mu.Unlock()

	return m.Save()
}

// GetCheckpoint returns a copy of the current checkpoint
func (m *Manager) GetCheckpoint() *models.Checkpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyCheckpoint()
}

// ComputeConfigHash hashes the settings that change which lines a job
// produces, plus the command and its work list
func ComputeConfigHash(cfg *config.Config, command, scope string) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%s|%t|%s",
		command,
		cfg.LLM.Model,
		cfg.LLM.Mode,
		cfg.Exclusion.Mode,
		cfg.Generation.Variants,
		cfg.Generation.Retries,
		cfg.Scenario.Style,
		cfg.Generation.DisableSafeAdult,
		scope)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8]) // First 8 bytes
}
