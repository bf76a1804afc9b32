package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Manifest records which batches of an indexing run have completed, so an
// interrupted run can resume without re-embedding finished batches. A batch
// is recorded only after its upsert succeeded. Combined with
// deterministic-id upsert this makes indexing safe to re-run at any point.
type Manifest struct {
	path string
	done map[string]bool
}

// manifestFile is the on-disk JSON shape.
type manifestFile struct {
	Batches []string `json:"batches"`
}

// LoadManifest opens the manifest at path, creating an empty one in memory
// when the file does not exist. An empty path disables persistence.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{path: path, done: make(map[string]bool)}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for _, key := range f.Batches {
		m.done[key] = true
	}

	return m, nil
}

// Done reports whether a batch key has completed.
func (m *Manifest) Done(key string) bool {
	return m.done[key]
}

// MarkDone records a completed batch and persists the manifest.
func (m *Manifest) MarkDone(key string) error {
	m.done[key] = true
	return m.save()
}

// Remove deletes the manifest file after a run completes cleanly.
func (m *Manifest) Remove() error {
	if m.path == "" {
		return nil
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove manifest %s: %w", m.path, err)
	}
	return nil
}

func (m *Manifest) save() error {
	if m.path == "" {
		return nil
	}

	keys := make([]string, 0, len(m.done))
	for key := range m.done {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	data, err := json.MarshalIndent(manifestFile{Batches: keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", m.path, err)
	}
	return nil
}
