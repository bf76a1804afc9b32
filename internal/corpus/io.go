package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteCorpus saves records as a single JSON array, the corpus file the
// indexer consumes.
func WriteCorpus(path string, records []Record) error {
	if len(records) == 0 {
		return ErrEmptyCorpus
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}

	return nil
}

// ReadCorpus loads a corpus file written by WriteCorpus.
func ReadCorpus(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	return records, nil
}
