// Package report renders per-run statistics for operator consumption:
// ingest counts, indexing totals, and query latency percentiles.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/schrutefarms/dunder/internal/corpus"
	"github.com/schrutefarms/dunder/internal/rag"
)

// topCharacterCount bounds the "top characters" table.
const topCharacterCount = 15

// IngestSummary aggregates one ingest run across all transcript files.
type IngestSummary struct {
	Files       int
	FailedFiles int
	Stats       corpus.BuildStats
	BySeason    map[int]int
	ByCharacter map[string]int
}

// Summarize computes per-season and per-character counts from the built
// corpus.
func Summarize(records []corpus.Record) (bySeason map[int]int, byCharacter map[string]int) {
	bySeason = make(map[int]int)
	byCharacter = make(map[string]int)
	for _, r := range records {
		bySeason[r.Season]++
		byCharacter[r.Character]++
	}
	return bySeason, byCharacter
}

// Render formats the ingest summary as tables.
func (s IngestSummary) Render() string {
	totals := renderTable(
		[]string{"Metric", "Count"},
		[][]string{
			{"Files processed", fmt.Sprintf("%d", s.Files)},
			{"Files failed", fmt.Sprintf("%d", s.FailedFiles)},
			{"Lines parsed", fmt.Sprintf("%d", s.Stats.LinesIn)},
			{"Records built", fmt.Sprintf("%d", s.Stats.RecordsOut)},
			{"Dropped (empty)", fmt.Sprintf("%d", s.Stats.DroppedEmpty)},
			{"Dropped (unresolved)", fmt.Sprintf("%d", s.Stats.DroppedUnres)},
			{"Unresolved speakers", fmt.Sprintf("%d (%.1f%%)", s.Stats.Unresolved, s.Stats.UnresolvedRate()*100)},
		},
	)

	out := totals

	if len(s.BySeason) > 0 {
		seasons := make([]int, 0, len(s.BySeason))
		for season := range s.BySeason {
			seasons = append(seasons, season)
		}
		sort.Ints(seasons)

		rows := make([][]string, 0, len(seasons))
		for _, season := range seasons {
			rows = append(rows, []string{fmt.Sprintf("Season %d", season), fmt.Sprintf("%d", s.BySeason[season])})
		}
		out += "\n" + renderTable([]string{"Season", "Lines"}, rows)
	}

	if len(s.ByCharacter) > 0 {
		out += "\n" + renderTable([]string{"Character", "Lines"}, topCharacters(s.ByCharacter, topCharacterCount))
	}

	return out
}

// IndexSummary formats indexing run statistics as a table.
func IndexSummary(stats rag.IndexStats) string {
	return renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Records indexed", fmt.Sprintf("%d", stats.Records)},
			{"Batches", fmt.Sprintf("%d", stats.Batches)},
			{"Batches resumed", fmt.Sprintf("%d", stats.Resumed)},
			{"Skipped existing", fmt.Sprintf("%d", stats.Skipped)},
			{"Estimated cost", fmt.Sprintf("$%.4f", stats.EstimatedCost)},
			{"Elapsed", stats.Elapsed.Round(10 * time.Millisecond).String()},
		},
	)
}

// topCharacters returns the n most frequent characters, count descending,
// name ascending on ties.
func topCharacters(byCharacter map[string]int, n int) [][]string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(byCharacter))
	for name, count := range byCharacter {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.name, fmt.Sprintf("%d", e.count)}
	}
	return rows
}

// renderTable renders headers and rows with a rounded style, first column
// left-aligned and the rest right-aligned.
func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		align := text.AlignRight
		if i == 0 {
			align = text.AlignLeft
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
