package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schrutefarms/dunder/internal/logging"
	"github.com/schrutefarms/dunder/internal/report"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with The Office Expert",
	Long: `Start an interactive chat session with The Office Expert.

Commands inside the session:
  debug   - toggle display of retrieved dialogue context
  stats   - show retrieval latency percentiles for this session
  quit    - exit

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and generation
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntVar(&topK, "topk", 5, "Number of dialogue lines to retrieve for context")
	chatCmd.Flags().IntVar(&contextBudget, "max-context", 4000, "Maximum context size in characters")
	chatCmd.Flags().StringVar(&model, "model", "gpt-4o-mini", "Generation model")
}

func runChat(cmd *cobra.Command, args []string) error {
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
	fmt.Println(headerStyle.Render("The Office Expert"))
	fmt.Println(contextStyle.Render("Ask me anything about The Office. Type 'quit' to exit, 'debug' to toggle context display."))
	fmt.Println()

	latency := &report.LatencyTracker{}
	debug := false
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(questionStyle.Render("You: "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println()
			fmt.Println(answerStyle.Render("Goodbye! That's what she said."))
			return nil
		case "debug":
			debug = !debug
			state := "off"
			if debug {
				state = "on"
			}
			fmt.Println(contextStyle.Render(fmt.Sprintf("[debug mode: %s]", state)))
			continue
		case "stats":
			fmt.Println(contextStyle.Render(latency.Render()))
			continue
		}

		answer, err := ex.Ask(ctx, input)
		if err != nil {
			// Generic failure message; internals stay in the logs.
			fmt.Println(errorStyle.Render("Sorry, something went wrong. Try again?"))
			continue
		}
		latency.Observe(answer.Latency)

		if debug {
			printContext(answer.Matches)
		}
		if answer.Degraded {
			fmt.Println(contextStyle.Render("(retrieval unavailable - answering from general persona only)"))
		}

		fmt.Println()
		fmt.Println(headerStyle.Render("Expert:"), answerStyle.Render(strings.TrimSpace(answer.Text)))
		fmt.Println()
	}

	return scanner.Err()
}
