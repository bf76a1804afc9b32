package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/schrutefarms/dunder/internal/corpus"
)

// costPerMillionTokens is the embedding price used for the operator cost
// estimate, with tokens approximated as chars/4. Observational only.
const costPerMillionTokens = 0.02

// IndexOptions configures a corpus indexing run.
type IndexOptions struct {
	// BatchSize bounds how many records go into one embedding request.
	BatchSize int

	// Concurrency bounds how many batches are in flight at once.
	Concurrency int

	// IncludeStage appends the stage direction to the embedded text for
	// richer delivery context.
	IncludeStage bool

	// SkipExisting queries the store and skips already-indexed ids.
	SkipExisting bool

	// ForceReindex deletes the records first, then re-inserts them.
	ForceReindex bool

	// ManifestPath enables the resume manifest. Empty disables it.
	ManifestPath string
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    100,
		Concurrency:  4,
		IncludeStage: true,
		SkipExisting: false,
		ForceReindex: false,
	}
}

// IndexStats reports what an indexing run did.
type IndexStats struct {
	Records       int           `json:"records"`
	Batches       int           `json:"batches"`
	Resumed       int           `json:"resumed_batches"`
	Skipped       int           `json:"skipped_existing"`
	EstimatedCost float64       `json:"estimated_cost_usd"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Indexer embeds dialogue records in batches and upserts them into the
// vector store. A batch counts as done only after its upsert succeeds, so
// the resume manifest never runs ahead of the store.
type Indexer struct {
	embedder Embedder
	store    VectorStore
	retry    RetryPolicy
	log      *zap.Logger
}

// NewIndexer creates an indexer. A nil logger disables logging.
func NewIndexer(embedder Embedder, store VectorStore, retry RetryPolicy, log *zap.Logger) (*Indexer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{embedder: embedder, store: store, retry: retry, log: log}, nil
}

// EmbedText renders the text that gets embedded for one record: speaker
// prefix plus utterance, optionally followed by the stage direction.
func EmbedText(r corpus.Record, includeStage bool) string {
	text := r.Character + ": " + r.Text
	if includeStage && r.Stage != "" {
		text += " " + r.Stage
	}
	return text
}

// Index embeds and upserts the corpus. Batches are dispatched concurrently
// up to opts.Concurrency; a persistent failure after bounded retries halts
// the run so a partial corpus is never silently treated as complete.
func (ix *Indexer) Index(ctx context.Context, records []corpus.Record, opts IndexOptions) (IndexStats, error) {
	start := time.Now()
	var stats IndexStats

	if len(records) == 0 {
		return stats, nil
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	if opts.ForceReindex {
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		if err := ix.store.Delete(ctx, ids); err != nil {
			return stats, fmt.Errorf("%w: delete before reindex: %v", ErrIndexingFailed, err)
		}
	}

	if opts.SkipExisting && !opts.ForceReindex {
		filtered, skipped, err := ix.filterExisting(ctx, records)
		if err != nil {
			// Upsert by deterministic id makes re-processing harmless, so
			// a failed existence check falls back to indexing everything.
			ix.log.Warn("existence check failed, indexing all records", zap.Error(err))
		} else {
			records = filtered
			stats.Skipped = skipped
		}
	}

	manifest, err := LoadManifest(opts.ManifestPath)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for batchStart := 0; batchStart < len(records); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(records) {
			batchEnd = len(records)
		}
		batch := records[batchStart:batchEnd]

		// The first record id names the batch; it is stable across re-runs
		// over the same corpus file.
		key := batch[0].ID

		mu.Lock()
		done := manifest.Done(key)
		if done {
			stats.Resumed++
		}
		mu.Unlock()
		if done {
			continue
		}

		g.Go(func() error {
			vectors, cost, err := ix.embedBatch(gctx, batch, opts.IncludeStage)
			if err != nil {
				return err
			}

			if err := ix.retry.Do(gctx, ix.log, "upsert", func(c context.Context) error {
				return ix.store.Upsert(c, vectors)
			}); err != nil {
				return fmt.Errorf("%w: upsert batch %s: %v", ErrIndexingFailed, key, err)
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Records += len(batch)
			stats.Batches++
			stats.EstimatedCost += cost
			if err := manifest.MarkDone(key); err != nil {
				return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
			}

			ix.log.Info("indexed batch",
				zap.String("batch", key),
				zap.Int("records", len(batch)),
				zap.Int("total", stats.Records))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stats.Elapsed = time.Since(start)
		return stats, err
	}

	if err := manifest.Remove(); err != nil {
		ix.log.Warn("could not remove manifest", zap.Error(err))
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// embedBatch generates embeddings for one batch under the retry policy and
// pairs them with their records.
func (ix *Indexer) embedBatch(ctx context.Context, batch []corpus.Record, includeStage bool) ([]DialogueVector, float64, error) {
	texts := make([]string, len(batch))
	chars := 0
	for i, r := range batch {
		texts[i] = EmbedText(r, includeStage)
		chars += len(texts[i])
	}

	var embeddings []EmbeddingRecord
	err := ix.retry.Do(ctx, ix.log, "embed", func(c context.Context) error {
		var embedErr error
		embeddings, embedErr = ix.embedder.Embed(c, texts)
		return embedErr
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: embed batch %s: %v", ErrIndexingFailed, batch[0].ID, err)
	}
	if len(embeddings) != len(batch) {
		return nil, 0, fmt.Errorf("%w: got %d embeddings for %d records", ErrIndexingFailed, len(embeddings), len(batch))
	}

	vectors := make([]DialogueVector, len(batch))
	for i, r := range batch {
		vectors[i] = DialogueVector{Record: r, Embedding: embeddings[i].Embedding}
	}

	cost := float64(chars) / 4 / 1e6 * costPerMillionTokens
	return vectors, cost, nil
}

// filterExisting drops records already present in the store.
func (ix *Indexer) filterExisting(ctx context.Context, records []corpus.Record) ([]corpus.Record, int, error) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}

	existing, err := ix.store.Existing(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	fresh := make([]corpus.Record, 0, len(records))
	for _, r := range records {
		if !existing[r.ID] {
			fresh = append(fresh, r)
		}
	}

	return fresh, len(records) - len(fresh), nil
}
