package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schrutefarms/dunder/internal/expert"
	"github.com/schrutefarms/dunder/internal/logging"
	"github.com/schrutefarms/dunder/internal/rag"
)

var (
	topK          int
	contextBudget int
	model         string
	showContext   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask The Office Expert a question",
	Long: `Ask a natural language question about The Office. The question is
embedded, similar dialogue is retrieved from the vector store, and an
answer is generated grounded in the retrieved lines.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and generation
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  dunder ask "What does Dwight think about beets?"
  dunder ask "Who started the fire?" --topk 10 --show-context`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&topK, "topk", expert.DefaultTopK, "Number of dialogue lines to retrieve for context")
	askCmd.Flags().IntVar(&contextBudget, "max-context", expert.DefaultContextBudget, "Maximum context size in characters")
	askCmd.Flags().StringVar(&model, "model", "gpt-4o-mini", "Generation model")
	askCmd.Flags().BoolVar(&showContext, "show-context", false, "Print the retrieved dialogue context")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	log, err := logging.New(logEnv, logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ex, closeFn, err := buildExpert(ctx, log)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer closeFn()

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	answer, err := ex.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if showContext {
		printContext(answer.Matches)
	}
	if answer.Degraded {
		fmt.Println(contextStyle.Render("(retrieval unavailable - answering from general persona only)"))
		fmt.Println()
	}

	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(answer.Text)))
	fmt.Println()

	return nil
}

// buildExpert wires the embedder, vector store, retriever, and LLM behind
// an Expert. The returned func closes the vector store connection.
func buildExpert(ctx context.Context, log *zap.Logger) (*expert.Expert, func(), error) {
	embedder, err := rag.NewOpenAIEmbedder(rag.DefaultEmbeddingModel, rag.DefaultEmbeddingDimension)
	if err != nil {
		return nil, nil, err
	}

	store, err := rag.NewMilvusStore(ctx, rag.DefaultMilvusConfig())
	if err != nil {
		return nil, nil, err
	}

	retriever, err := rag.NewRetriever(embedder, store, rag.DefaultRetryPolicy(), 0, log)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	llmConfig := expert.DefaultLLMConfig()
	llmConfig.Model = model

	llm, err := expert.NewOpenAILLM(llmConfig)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	ex, err := expert.NewExpert(retriever, llm, llmConfig, topK, contextBudget, log)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return ex, func() { store.Close() }, nil
}

// printContext renders the retrieved dialogue for debugging.
func printContext(matches []rag.Match) {
	fmt.Println(contextStyle.Render("Retrieved context:"))
	for _, m := range matches {
		fmt.Println(contextStyle.Render(fmt.Sprintf("  %.3f %s", m.Score, expert.ContextLine(m))))
	}
	fmt.Println()
}
