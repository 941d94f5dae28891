package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/fintrack/internal/model"
)

// JSON-backed work item file used to seed and persist the stub backend.
// Single file, human-readable. No locking; the stub serialises writes itself.

// DefaultFileName is used when no path is configured.
const DefaultFileName = "workitems.json"

// DefaultPath returns DefaultFileName in the working directory.
func DefaultPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, DefaultFileName), nil
}

// Load reads items from path. A missing file is an empty list.
func Load(path string) ([]model.WorkItem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.WorkItem{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.WorkItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return items, nil
}

// Save writes items to path, replacing the previous content.
func Save(path string, items []model.WorkItem) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
