package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SchemaVersion is baked into the store's file name. Bumping it makes old
// files invisible to Load, so a schema change simply starts fresh instead
// of attempting a silent migration.
const SchemaVersion = 2

// Persister is the durable-storage port for the rule store.
type Persister interface {
	Load() (map[string]GroupConfig, error)
	Save(map[string]GroupConfig) error
}

// FilePersister stores the full group mapping as a single JSON file.
type FilePersister struct {
	path string
}

// NewFilePersister places the versioned rules file under dir.
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{
		path: filepath.Join(dir, fmt.Sprintf("rules_v%d.json", SchemaVersion)),
	}
}

// Path returns the backing file path.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the mapping from disk. A missing file is not an error; it
// yields an empty mapping.
func (p *FilePersister) Load() (map[string]GroupConfig, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]GroupConfig{}, nil
		}
		return nil, fmt.Errorf("rules: read %s: %w", p.path, err)
	}

	cfgs := map[string]GroupConfig{}
	if err := json.Unmarshal(data, &cfgs); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", p.path, err)
	}
	return cfgs, nil
}

// Save writes the whole mapping atomically (tmp + rename).
func (p *FilePersister) Save(cfgs map[string]GroupConfig) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("rules: create directory: %w", err)
	}

	data, err := json.MarshalIndent(cfgs, "", "  ")
	if err != nil {
		return fmt.Errorf("rules: marshal: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("rules: write: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("rules: rename: %w", err)
	}
	return nil
}
