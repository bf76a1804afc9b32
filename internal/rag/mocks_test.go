package rag

import (
	"context"
	"sync"
)

// mockEmbedder returns a fixed-size vector per text and counts calls. Safe
// for concurrent use; the indexer embeds batches in parallel.
type mockEmbedder struct {
	mu         sync.Mutex
	calls      int
	failures   int // fail this many calls before succeeding
	failAlways bool
	err        error
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.failAlways {
		return nil, m.err
	}
	if m.failures > 0 {
		m.failures--
		return nil, m.err
	}

	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		records[i] = EmbeddingRecord{
			Text:      text,
			Embedding: []float32{float32(len(text)), 0.5, 0.25},
			Index:     i,
			Model:     "mock-model",
		}
	}
	return records, nil
}

func (m *mockEmbedder) GetModel() string  { return "mock-model" }
func (m *mockEmbedder) GetDimension() int { return 3 }

// mockVectorStore keeps vectors in a map keyed by record id, mirroring the
// upsert semantics of the real store.
type mockVectorStore struct {
	mu       sync.Mutex
	rows     map[string]DialogueVector
	upserts  int
	searches int

	matches    []Match // returned by Search
	upsertErr  error
	searchErr  error
	existErr   error
	deleteErr  error
	searchOpts *SearchOptions // last opts seen by Search
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{rows: make(map[string]DialogueVector)}
}

func (m *mockVectorStore) Upsert(ctx context.Context, vectors []DialogueVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, v := range vectors {
		m.rows[v.Record.ID] = v
	}
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.searches++
	m.searchOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.matches, nil
}

func (m *mockVectorStore) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.existErr != nil {
		return nil, m.existErr
	}
	existing := make(map[string]bool)
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, id := range ids {
		delete(m.rows, id)
	}
	return nil
}

func (m *mockVectorStore) Stats(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]string{"row_count": "0"}, nil
}

func (m *mockVectorStore) Close() error { return nil }

func (m *mockVectorStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
