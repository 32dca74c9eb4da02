package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitegate/sitegate/internal/domain"
)

// File is the history location relative to the project root.
const File = ".sitegate/history/runs.json"

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the project's run history.
func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	fp := filepath.Join(projectPath, File)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

// Load returns every recorded run, oldest first. No history is not an error.
func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	fp := filepath.Join(projectPath, File)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", File, err)
	}

	return entries, nil
}

// Filter returns the entries recorded for g, or all entries when g is empty.
func Filter(entries []domain.RunEntry, g domain.Gate) []domain.RunEntry {
	if g == "" {
		return entries
	}
	out := make([]domain.RunEntry, 0, len(entries))
	for _, e := range entries {
		if e.Gate == g {
			out = append(out, e)
		}
	}
	return out
}
