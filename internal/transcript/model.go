// Package transcript normalizes raw scraped transcript text into attributed
// dialogue lines. Raw transcripts arrive in a small set of structural
// conventions; each is handled by a Format implementation and produces the
// same line-level representation.
package transcript

import "errors"

// Common errors for transcript normalization
var (
	ErrEmptyTranscript = errors.New("transcript is empty or contains no text")
)

// Line is one normalized transcript line. Speaker is the raw speaker token
// as written in the source; identity resolution happens downstream.
type Line struct {
	// Speaker is the raw speaker token. Empty for unattributed lines
	// (malformed blocks kept on a best-effort basis).
	Speaker string `json:"speaker"`

	// Text is the spoken utterance with stage directions removed.
	Text string `json:"text"`

	// Stage holds parenthesized delivery notes pulled out of the utterance,
	// e.g. "(laughing)". Empty when the line has none.
	Stage string `json:"stage,omitempty"`

	// Scene is the name of the scene the line belongs to, taken from the
	// most recent scene marker. Empty when the source has no markers.
	Scene string `json:"scene,omitempty"`

	// SceneIndex counts scene boundaries from the start of the episode.
	// Zero when the source has no scene markers.
	SceneIndex int `json:"scene_index"`

	// SourceLine is the 1-based line number in the raw input, for
	// diagnostics.
	SourceLine int `json:"source_line"`
}

// Format parses one structural convention of raw transcript text.
// Implementations must be stateless; new conventions are added as new
// implementations rather than branches in a shared parser.
type Format interface {
	// Name identifies the format in logs and statistics.
	Name() string

	// Detect reports whether the raw text looks like this format.
	Detect(raw string) bool

	// Parse converts raw text into ordered lines. Malformed segments
	// degrade to unattributed lines; only structurally empty input fails.
	Parse(raw string) ([]Line, error)
}
