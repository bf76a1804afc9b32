// Package rag indexes the dialogue corpus into a vector store and retrieves
// ranked dialogue for free-text queries.
package rag

import (
	"context"
	"errors"

	"github.com/schrutefarms/dunder/internal/corpus"
)

// Common errors for indexing and retrieval
var (
	ErrEmptyTexts           = errors.New("no texts provided for embedding")
	ErrMissingAPIKey        = errors.New("OPENAI_API_KEY environment variable not set")
	ErrEmbeddingFailed      = errors.New("embedding generation failed")
	ErrIndexingFailed       = errors.New("corpus indexing failed")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrInvalidDimension     = errors.New("invalid vector dimension")
	ErrEmptyRecords         = errors.New("no records provided")
	ErrConnectionFailed     = errors.New("failed to connect to vector store")
	ErrUpsertFailed         = errors.New("failed to upsert records")
	ErrSearchFailed         = errors.New("failed to search vectors")
)

// DialogueVector pairs a dialogue record with its embedding for storage.
// The pipeline never inspects the vector beyond its length.
type DialogueVector struct {
	Record    corpus.Record
	Embedding []float32
}

// Match is one retrieval hit: a dialogue record with its similarity score.
type Match struct {
	Record corpus.Record `json:"record"`
	Score  float32       `json:"score"`
}

// SearchOptions filters similarity search.
type SearchOptions struct {
	// Character restricts hits to one canonical speaker.
	Character string `json:"character,omitempty"`

	// Season restricts hits to one season. Zero means all seasons.
	Season int `json:"season,omitempty"`
}

// VectorStore is the external similarity store. Upsert is keyed by the
// record's deterministic id, so re-indexing the same corpus never
// duplicates entries.
type VectorStore interface {
	// Upsert writes records and their embeddings, replacing rows with the
	// same id.
	Upsert(ctx context.Context, vectors []DialogueVector) error

	// Search performs top-K similarity search, descending score.
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]Match, error)

	// Existing reports which of the given record ids are already stored.
	Existing(ctx context.Context, ids []string) (map[string]bool, error)

	// Delete removes records by id.
	Delete(ctx context.Context, ids []string) error

	// Stats returns collection statistics (row count etc.).
	Stats(ctx context.Context) (map[string]string, error)

	// Close releases the connection.
	Close() error
}
