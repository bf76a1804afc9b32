package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schrutefarms/dunder/internal/corpus"
	"github.com/schrutefarms/dunder/internal/logging"
	"github.com/schrutefarms/dunder/internal/rag"
	"github.com/schrutefarms/dunder/internal/report"
)

var (
	batchSize    int
	concurrency  int
	manifestPath string
	skipExisting bool
	forceReindex bool
	noStage      bool
)

var indexCmd = &cobra.Command{
	Use:   "index [corpus.json]",
	Short: "Embed the dialogue corpus and upsert it into Milvus",
	Long: `Index embeds each dialogue record with OpenAI and upserts it into the
Milvus collection, keyed by the record's deterministic id.

Interrupted runs are resumable: completed batches are tracked in a
manifest file and skipped on re-run, and upserting by id means a re-run
never duplicates corpus entries.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)
  MILVUS_COLLECTION  - Collection name (default: office_dialogues)

Examples:
  dunder index corpus.json
  dunder index corpus.json --skip-existing
  dunder index corpus.json --force-reindex --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().IntVar(&batchSize, "batch-size", 100, "Records per embedding request")
	indexCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent embedding batches")
	indexCmd.Flags().StringVar(&manifestPath, "manifest", "index.manifest.json", "Resume manifest path (empty to disable)")
	indexCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip records already present in the store")
	indexCmd.Flags().BoolVar(&forceReindex, "force-reindex", false, "Delete and re-insert the corpus records")
	indexCmd.Flags().BoolVar(&noStage, "no-stage", false, "Exclude stage directions from the embedded text")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logging.New(logEnv, logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	records, err := corpus.ReadCorpus(args[0])
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(contextStyle.Render(fmt.Sprintf("→ Indexing %d dialogue records...", len(records))))

	embedder, err := rag.NewOpenAIEmbedder(rag.DefaultEmbeddingModel, rag.DefaultEmbeddingDimension)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	store, err := rag.NewMilvusStore(ctx, rag.DefaultMilvusConfig())
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	indexer, err := rag.NewIndexer(embedder, store, rag.DefaultRetryPolicy(), log)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	opts := rag.IndexOptions{
		BatchSize:    batchSize,
		Concurrency:  concurrency,
		IncludeStage: !noStage,
		SkipExisting: skipExisting,
		ForceReindex: forceReindex,
		ManifestPath: manifestPath,
	}

	stats, err := indexer.Index(ctx, records, opts)
	if err != nil {
		// Partial progress is preserved in the manifest; re-running
		// resumes from the last completed batch.
		fmt.Println(report.IndexSummary(stats))
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Index summary"))
	fmt.Println(report.IndexSummary(stats))
	fmt.Println()
	fmt.Println(successStyle.Render("✓ Corpus indexed"))

	return nil
}
