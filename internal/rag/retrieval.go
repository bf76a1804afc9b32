package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// DefaultRetrieveTimeout bounds one retrieval (embedding plus search).
// Retrieval sits on the user-facing request path: a stuck external call
// must surface as unavailable, not hang the query.
const DefaultRetrieveTimeout = 15 * time.Second

// Retriever provides semantic retrieval over the indexed dialogue corpus.
// It is stateless and safe for concurrent queries.
type Retriever struct {
	embedder Embedder
	store    VectorStore
	retry    RetryPolicy
	timeout  time.Duration
	log      *zap.Logger
}

// NewRetriever creates a Retriever. timeout <= 0 selects the default.
func NewRetriever(embedder Embedder, store VectorStore, retry RetryPolicy, timeout time.Duration, log *zap.Logger) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultRetrieveTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{embedder: embedder, store: store, retry: retry, timeout: timeout, log: log}, nil
}

// Retrieve embeds the query and returns at most topK dialogue records in
// descending similarity order. Fewer than topK hits is not an error. A
// failed embedding or search, after bounded retries, surfaces as
// ErrRetrievalUnavailable; both steps are idempotent, so retrying them is
// safe.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, opts *SearchOptions) ([]Match, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var queryVector []float32
	err := r.retry.Do(ctx, r.log, "embed query", func(c context.Context) error {
		records, embedErr := r.embedder.Embed(c, []string{query})
		if embedErr != nil {
			return embedErr
		}
		if len(records) == 0 {
			return fmt.Errorf("%w: no embedding generated for query", ErrEmbeddingFailed)
		}
		queryVector = records[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	var matches []Match
	err = r.retry.Do(ctx, r.log, "search", func(c context.Context) error {
		var searchErr error
		matches, searchErr = r.store.Search(c, queryVector, topK, opts)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	// Results are descending by score; equal scores keep store order.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}
