package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/results"
	"megrep/pkg/storage"
)

// Checkpoint is the persisted state of a conversion run
type Checkpoint struct {
	Timestamp      time.Time                  `json:"timestamp"`
	ProcessedCount int                        `json:"processedCount"`
	TotalCount     int                        `json:"totalCount"`
	Results        []results.ConversionResult `json:"results"`
	ProcessedFiles []string                   `json:"processedFiles"`
}

// ProcessedSet returns the processed inputs as a set
func (c *Checkpoint) ProcessedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ProcessedFiles))
	for _, f := range c.ProcessedFiles {
		set[f] = struct{}{}
	}
	return set
}

// IsEmpty reports whether the checkpoint carries no progress
func (c *Checkpoint) IsEmpty() bool {
	return len(c.ProcessedFiles) == 0 && len(c.Results) == 0
}

// validate checks the invariants a loaded checkpoint must satisfy
func (c *Checkpoint) validate() error {
	if c.ProcessedCount < 0 || c.TotalCount < 0 {
		return errors.New("negative counts")
	}
	for i, f := range c.ProcessedFiles {
		if f == "" {
			return fmt.Errorf("processedFiles[%d] is empty", i)
		}
	}
	for i, r := range c.Results {
		if r.Original.Path == "" {
			return fmt.Errorf("results[%d] has no original path", i)
		}
	}
	return nil
}

// Manager handles checkpoint operations
type Manager struct {
	checkpointPath string
	logger         logger.Logger
	mu             sync.Mutex
}

// NewManager creates a checkpoint manager for the file at path
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		checkpointPath: path,
		logger:         log.WithField("component", "checkpoint"),
	}
}

// Path returns the checkpoint location
func (m *Manager) Path() string {
	return m.checkpointPath
}

// Load reads the checkpoint. A missing file yields an empty checkpoint;
// a file that cannot be read, parsed or validated is logged and also
// yields an empty checkpoint.
func (m *Manager) Load() *Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cp Checkpoint
	if err := storage.ReadJSON(m.checkpointPath, &cp); err != nil {
		if !os.IsNotExist(err) {
			m.logger.WithError(err).
				WithField("path", m.checkpointPath).
				Warn("Failed to read checkpoint, starting fresh")
		}
		return &Checkpoint{}
	}

	if err := cp.validate(); err != nil {
		m.logger.WithError(err).
			WithField("path", m.checkpointPath).
			Warn("Invalid checkpoint, starting fresh")
		return &Checkpoint{}
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"path":      m.checkpointPath,
		"processed": cp.ProcessedCount,
		"results":   len(cp.Results),
		"updatedAt": cp.Timestamp,
	})

	return &cp
}

// Save writes the checkpoint to disk atomically
func (m *Manager) Save(cp *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp.Timestamp = time.Now().UTC()
	if cp.Results == nil {
		cp.Results = []results.ConversionResult{}
	}
	if cp.ProcessedFiles == nil {
		cp.ProcessedFiles = []string{}
	}

	if err := storage.WriteJSON(m.checkpointPath, cp); err != nil {
		return errs.New(errs.ErrorTypeCheckpoint, "save", m.checkpointPath, err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"processed": cp.ProcessedCount,
		"total":     cp.TotalCount,
	})

	return nil
}

// Clear removes the checkpoint file
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := storage.Remove(m.checkpointPath); err != nil {
		return errs.New(errs.ErrorTypeCheckpoint, "clear", m.checkpointPath, err)
	}

	m.logger.Info("Checkpoint cleared")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	return storage.Exists(m.checkpointPath)
}

// Backup copies the current checkpoint to <path>.backup. It is a no-op when
// no checkpoint exists.
func (m *Manager) Backup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !storage.Exists(m.checkpointPath) {
		return nil
	}

	backupPath := m.checkpointPath + ".backup"
	if err := storage.CopyFile(m.checkpointPath, backupPath); err != nil {
		return errs.New(errs.ErrorTypeCheckpoint, "backup", backupPath, err)
	}

	m.logger.WithField("backup", backupPath).Info("Checkpoint backed up")
	return nil
}

// Info returns a summary of the stored checkpoint, or nil when there is none
func (m *Manager) Info() map[string]interface{} {
	if !m.Exists() {
		return nil
	}
	cp := m.Load()
	if cp.IsEmpty() {
		return nil
	}
	return map[string]interface{}{
		"processed":  cp.ProcessedCount,
		"total":      cp.TotalCount,
		"results":    len(cp.Results),
		"updated_at": cp.Timestamp,
		"age":        time.Since(cp.Timestamp).Round(time.Second),
	}
}
