package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/policyguard/policyguard/internal/domain"
)

const historyFile = "history.json"

// FileHistory implements domain.HistorySnapshot using JSON file storage
// under the client's state directory.
type FileHistory struct {
	stateDir string
}

func New(stateDir string) *FileHistory {
	return &FileHistory{stateDir: stateDir}
}

// Save replaces the stored snapshot with entries.
func (h *FileHistory) Save(entries []domain.HistoryEntry) error {
	fp := filepath.Join(h.stateDir, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a reader never sees a half-written file.
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fp)
}

func (h *FileHistory) Load() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(filepath.Join(h.stateDir, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
