package rag

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "office_dialogues"
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      DefaultEmbeddingDimension,
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore using Milvus. The primary key is the
// record's deterministic id (no AutoID), so writes go through Upsert and
// re-indexing the same corpus replaces rows instead of duplicating them.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the collection exists with
// the dialogue schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         false,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "character",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "stage",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "episode_code",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "episode_title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "season",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "episode_number",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "scene_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "line_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Upsert writes dialogue vectors keyed by record id.
func (m *MilvusStore) Upsert(ctx context.Context, vectors []DialogueVector) error {
	if len(vectors) == 0 {
		return ErrEmptyRecords
	}

	ids := make([]string, len(vectors))
	characters := make([]string, len(vectors))
	texts := make([]string, len(vectors))
	stages := make([]string, len(vectors))
	codes := make([]string, len(vectors))
	titles := make([]string, len(vectors))
	seasons := make([]int64, len(vectors))
	episodes := make([]int64, len(vectors))
	sceneIdx := make([]int64, len(vectors))
	lineIdx := make([]int64, len(vectors))
	embeddings := make([][]float32, len(vectors))

	for i, v := range vectors {
		if len(v.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d for %s",
				ErrInvalidDimension, m.config.Dimension, len(v.Embedding), v.Record.ID)
		}
		r := v.Record
		ids[i] = r.ID
		characters[i] = r.Character
		texts[i] = r.Text
		stages[i] = r.Stage
		codes[i] = r.EpisodeCode
		titles[i] = r.EpisodeTitle
		seasons[i] = int64(r.Season)
		episodes[i] = int64(r.Episode)
		sceneIdx[i] = int64(r.SceneIndex)
		lineIdx[i] = int64(r.LineIndex)
		embeddings[i] = v.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("character", characters),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("stage", stages),
		entity.NewColumnVarChar("episode_code", codes),
		entity.NewColumnVarChar("episode_title", titles),
		entity.NewColumnInt64("season", seasons),
		entity.NewColumnInt64("episode_number", episodes),
		entity.NewColumnInt64("scene_index", sceneIdx),
		entity.NewColumnInt64("line_index", lineIdx),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
	}

	if _, err := m.client.Upsert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsertFailed, err)
	}

	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}

	return nil
}

var outputFields = []string{
	"id", "character", "text", "stage", "episode_code", "episode_title",
	"season", "episode_number", "scene_index", "line_index",
}

// Search performs top-K similarity search with optional filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]Match, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	expr := searchExpr(opts)

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil,
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		match := Match{Score: results[0].Scores[i]}
		for _, field := range results[0].Fields {
			switch field.Name() {
			case "id":
				match.Record.ID = field.(*entity.ColumnVarChar).Data()[i]
			case "character":
				match.Record.Character = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				match.Record.Text = field.(*entity.ColumnVarChar).Data()[i]
			case "stage":
				match.Record.Stage = field.(*entity.ColumnVarChar).Data()[i]
			case "episode_code":
				match.Record.EpisodeCode = field.(*entity.ColumnVarChar).Data()[i]
			case "episode_title":
				match.Record.EpisodeTitle = field.(*entity.ColumnVarChar).Data()[i]
			case "season":
				match.Record.Season = int(field.(*entity.ColumnInt64).Data()[i])
			case "episode_number":
				match.Record.Episode = int(field.(*entity.ColumnInt64).Data()[i])
			case "scene_index":
				match.Record.SceneIndex = int(field.(*entity.ColumnInt64).Data()[i])
			case "line_index":
				match.Record.LineIndex = int(field.(*entity.ColumnInt64).Data()[i])
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// Existing reports which record ids are already stored.
func (m *MilvusStore) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil,
		idInExpr(ids),
		[]string{"id"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query record ids: %w", err)
	}

	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = false
	}
	for _, column := range results {
		if column.Name() != "id" {
			continue
		}
		if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
			for _, id := range varcharCol.Data() {
				existing[id] = true
			}
		}
	}

	return existing, nil
}

// Delete removes records by id.
func (m *MilvusStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", idInExpr(ids)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// Stats returns collection statistics.
func (m *MilvusStore) Stats(ctx context.Context) (map[string]string, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// Close releases the Milvus connection.
func (m *MilvusStore) Close() error {
	return m.client.Close()
}

// searchExpr builds the boolean filter expression for optional search
// filters. String values are quoted so a name containing a double quote
// cannot corrupt the expression.
func searchExpr(opts *SearchOptions) string {
	if opts == nil {
		return ""
	}

	var exprs []string
	if opts.Character != "" {
		exprs = append(exprs, fmt.Sprintf("character == %q", opts.Character))
	}
	if opts.Season > 0 {
		exprs = append(exprs, fmt.Sprintf("season == %d", opts.Season))
	}
	return strings.Join(exprs, " and ")
}

// idInExpr builds a Milvus `id in [...]` filter expression.
func idInExpr(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("id in [%s]", strings.Join(quoted, ", "))
}
