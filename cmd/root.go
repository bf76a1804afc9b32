package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logEnv   string
)

var rootCmd = &cobra.Command{
	Use:   "dunder",
	Short: "Dunder - The Office dialogue corpus and RAG chatbot",
	Long: `Dunder builds a searchable dialogue corpus from scraped transcripts of
The Office and answers questions about the show with retrieval-augmented
generation.

It normalizes raw transcript files into attributed dialogue records,
indexes them into a vector store (Milvus) with OpenAI embeddings, and
grounds chatbot answers in the retrieved dialogue.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logEnv, "log-env", "dev", "Log output: dev (console) or prod (JSON)")
}
