// Package corpus turns normalized transcript lines into the canonical
// dialogue corpus: immutable, deterministically identified records that are
// the atomic unit of retrieval.
package corpus

import (
	"errors"
	"fmt"
)

// Common errors for corpus construction
var (
	ErrBadFilename = errors.New("filename does not encode an episode")
	ErrEmptyCorpus = errors.New("corpus contains no records")
)

// Record is one attributed utterance with its episode/scene location.
// Created once by the builder and never mutated; the whole corpus is
// rebuilt rather than edited.
type Record struct {
	// ID is deterministic across reprocessing runs: episode code + scene
	// index + line index. Identical content in different episodes stays
	// distinguishable; re-ingestion never duplicates corpus entries.
	ID string `json:"id"`

	// Character is always a canonical name (or the Unknown sentinel),
	// never a raw unresolved token.
	Character string `json:"character"`

	// Text is the spoken utterance. Never empty.
	Text string `json:"text"`

	// Stage holds the attached stage direction, e.g. "(laughing)".
	Stage string `json:"stage,omitempty"`

	EpisodeCode  string `json:"episode_code"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode_number"`
	EpisodeTitle string `json:"episode_title"`
	Scene        string `json:"scene,omitempty"`
	SceneIndex   int    `json:"scene_index"`
	LineIndex    int    `json:"line_index"`
}

// RecordID derives the deterministic identifier for a dialogue position.
func RecordID(episodeCode string, sceneIndex, lineIndex int) string {
	return fmt.Sprintf("%s/s%02d/l%04d", episodeCode, sceneIndex, lineIndex)
}

// EpisodeInfo is the per-file metadata parsed from the transcript filename.
type EpisodeInfo struct {
	Code    string `json:"episode_code"` // e.g. "01x01", "09x24-25"
	Season  int    `json:"season"`
	Episode int    `json:"episode_number"` // first episode for double episodes
	Title   string `json:"episode_title"`
}

// BuildStats counts what happened during record construction. Reported per
// file and aggregated per run: silent data loss during corpus construction
// is a retrieval-coverage bug, so every drop is counted.
type BuildStats struct {
	LinesIn      int `json:"lines_in"`
	RecordsOut   int `json:"records_out"`
	DroppedEmpty int `json:"dropped_empty"`
	Unresolved   int `json:"unresolved_speakers"`
	DroppedUnres int `json:"dropped_unresolved"`
}

// Add merges per-file stats into a run aggregate.
func (s *BuildStats) Add(o BuildStats) {
	s.LinesIn += o.LinesIn
	s.RecordsOut += o.RecordsOut
	s.DroppedEmpty += o.DroppedEmpty
	s.Unresolved += o.Unresolved
	s.DroppedUnres += o.DroppedUnres
}

// UnresolvedRate is the fraction of input lines whose speaker could not be
// resolved, in [0, 1].
func (s BuildStats) UnresolvedRate() float64 {
	if s.LinesIn == 0 {
		return 0
	}
	return float64(s.Unresolved) / float64(s.LinesIn)
}
