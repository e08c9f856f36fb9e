package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"twfollow/pkg/logger"
)

// Checkpoint records which usernames of a follow run were already handled
type Checkpoint struct {
	Login     string            `json:"login"`
	Targets   []string          `json:"targets"`
	Processed map[string]string `json:"processed"` // username -> result reason
	Followed  int               `json:"followed"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int               `json:"version"`
}

// IsProcessed reports whether username already has a result
func (c *Checkpoint) IsProcessed(username string) bool {
	_, ok := c.Processed[username]
	return ok
}

// Manager handles checkpoint operations
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a manager for the follow run checkpoint of login
func NewManager(dataDir, login string) (*Manager, error) {
	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(checkpointsDir, fmt.Sprintf("%s.follow.json", login)),
		logger:         logger.GetLogger().WithField("component", "checkpoint"),
	}, nil
}

// Path returns the checkpoint file path
func (m *Manager) Path() string {
	return m.checkpointPath
}

// Create creates and saves a new checkpoint for targets
func (m *Manager) Create(login string, targets []string) (*Checkpoint, error) {
	now := time.Now()
	checkpoint := &Checkpoint{
		Login:     login,
		Targets:   targets,
		Processed: make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("Checkpoint created", map[string]interface{}{
		"login":   login,
		"targets": len(targets),
		"path":    m.checkpointPath,
	})
	return checkpoint, nil
}

// Load loads an existing checkpoint; nil when none exists
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.Processed == nil {
		checkpoint.Processed = make(map[string]string)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"login":      checkpoint.Login,
		"processed":  len(checkpoint.Processed),
		"followed":   checkpoint.Followed,
		"updated_at": checkpoint.UpdatedAt,
	})
	return &checkpoint, nil
}

// Save saves the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// Resume returns a tracker over the saved checkpoint of login, or over a new
// one when none exists or it belongs to another login.
func (m *Manager) Resume(login string, targets []string) (*Tracker, error) {
	checkpoint, err := m.Load()
	if err != nil {
		return nil, err
	}
	if checkpoint == nil || checkpoint.Login != login {
		checkpoint, err = m.Create(login, targets)
		if err != nil {
			return nil, err
		}
	}
	return &Tracker{manager: m, checkpoint: checkpoint}, nil
}

// Tracker records results of a follow run as they happen
type Tracker struct {
	manager    *Manager
	checkpoint *Checkpoint
}

// Checkpoint returns the tracked checkpoint
func (t *Tracker) Checkpoint() *Checkpoint {
	return t.checkpoint
}

// Done reports whether username was handled by an earlier run
func (t *Tracker) Done(username string) bool {
	return t.checkpoint.IsProcessed(username)
}

// Record stores the result of username. Save failures are logged.
func (t *Tracker) Record(username string, success bool, reason string) {
	t.checkpoint.Processed[username] = reason
	if success {
		t.checkpoint.Followed++
	}
	if err := t.manager.Save(t.checkpoint); err != nil {
		t.manager.logger.WithError(err).Warn("Failed to save checkpoint")
	}
}

// Finish deletes the checkpoint once the run completed
func (t *Tracker) Finish() error {
	return t.manager.Delete()
}
