package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/schrutefarms/dunder/internal/character"
	"github.com/schrutefarms/dunder/internal/corpus"
	"github.com/schrutefarms/dunder/internal/logging"
	"github.com/schrutefarms/dunder/internal/report"
	"github.com/schrutefarms/dunder/internal/transcript"
)

var (
	ingestOut      string
	aliasFile      string
	dropUnresolved bool
	matchThreshold float64
	unresolvedWarn float64
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [transcript-dir]",
	Short: "Build the dialogue corpus from raw transcript files",
	Long: `Ingest parses raw transcript .txt files (one per episode, named like
01x01_Pilot.txt), resolves speaker names against the alias table, and
writes the canonical dialogue corpus as JSON.

A malformed file is reported and skipped; it never aborts the batch.

Examples:
  dunder ingest ./transcripts
  dunder ingest ./transcripts --out corpus.json --aliases characters.yaml
  dunder ingest ./transcripts --drop-unresolved`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestOut, "out", "corpus.json", "Output corpus file")
	ingestCmd.Flags().StringVar(&aliasFile, "aliases", "", "Alias table YAML (default: built-in table)")
	ingestCmd.Flags().BoolVar(&dropUnresolved, "drop-unresolved", false, "Drop records with unresolved speakers instead of tagging them Unknown")
	ingestCmd.Flags().Float64Var(&matchThreshold, "match-threshold", character.DefaultMatchThreshold, "Fuzzy speaker-match similarity threshold (0-1)")
	ingestCmd.Flags().Float64Var(&unresolvedWarn, "warn-rate", corpus.DefaultWarnRate, "Unresolved-speaker rate that triggers a warning")
}

func runIngest(cmd *cobra.Command, args []string) error {
	log, err := logging.New(logEnv, logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	table := character.DefaultTable()
	if aliasFile != "" {
		table, err = character.LoadTable(aliasFile)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
	}

	policy := corpus.KeepUnknown
	if dropUnresolved {
		policy = corpus.DropUnresolved
	}

	resolver := character.NewResolver(table, matchThreshold)
	builder := corpus.NewBuilder(resolver, policy, unresolvedWarn, log)

	files, err := transcriptFiles(args[0])
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%s no .txt transcript files in %s", errorStyle.Render("Error:"), args[0])
	}

	fmt.Println(contextStyle.Render(fmt.Sprintf("→ Processing %d transcript files...", len(files))))

	summary := report.IngestSummary{}
	var records []corpus.Record

	for _, path := range files {
		info, err := corpus.ParseEpisodeFilename(path)
		if err != nil {
			summary.FailedFiles++
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: cannot parse episode info", filepath.Base(path))))
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			summary.FailedFiles++
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: %v", filepath.Base(path), err)))
			continue
		}

		lines, err := transcript.Normalize(string(raw))
		if err != nil {
			summary.FailedFiles++
			if errors.Is(err, transcript.ErrEmptyTranscript) {
				fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: empty transcript", filepath.Base(path))))
			} else {
				fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: %v", filepath.Base(path), err)))
			}
			continue
		}

		built, stats := builder.Build(lines, info)
		records = append(records, built...)
		summary.Files++
		summary.Stats.Add(stats)

		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s - %s: %d lines", info.Code, info.Title, stats.RecordsOut)))
	}

	if len(records) == 0 {
		return fmt.Errorf("%s no dialogue records built", errorStyle.Render("Error:"))
	}

	if err := corpus.WriteCorpus(ingestOut, records); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	summary.BySeason, summary.ByCharacter = report.Summarize(records)

	fmt.Println()
	fmt.Println(headerStyle.Render("Ingest summary"))
	fmt.Println(summary.Render())
	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Corpus written to %s (%d records)", ingestOut, len(records))))

	return nil
}

// transcriptFiles lists .txt files in a directory, sorted by name so
// record construction order is deterministic.
func transcriptFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read transcript dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
