package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/policyguard/policyguard/internal/domain"
)

const lastRunFile = "last_run.json"

// Store is a file-based implementation of domain.RunStore. It keeps only the
// most recent successful run.
type Store struct {
	stateDir string
}

// New creates a store rooted at stateDir.
func New(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

// Load reads the last run from disk. Returns (nil, nil) if none was recorded.
func (s *Store) Load() (*domain.RunRecord, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no previous run is not an error
		}
		return nil, err
	}

	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save writes the run record to disk, creating directories as needed.
func (s *Store) Save(rec *domain.RunRecord) error {
	if err := os.MkdirAll(s.stateDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

// Invalidate removes the stored run.
func (s *Store) Invalidate() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.stateDir, lastRunFile)
}
