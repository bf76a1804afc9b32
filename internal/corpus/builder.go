package corpus

import (
	"go.uber.org/zap"

	"github.com/schrutefarms/dunder/internal/character"
	"github.com/schrutefarms/dunder/internal/transcript"
)

// UnresolvedPolicy decides what happens to lines whose speaker cannot be
// resolved against the alias table.
type UnresolvedPolicy int

const (
	// KeepUnknown attributes the record to the Unknown sentinel character.
	KeepUnknown UnresolvedPolicy = iota

	// DropUnresolved discards the record. Drops are still counted.
	DropUnresolved
)

// DefaultWarnRate is the unresolved-speaker rate above which a build logs a
// warning, per file.
const DefaultWarnRate = 0.10

// Builder converts resolved transcript lines into dialogue records.
type Builder struct {
	resolver *character.Resolver
	policy   UnresolvedPolicy
	warnRate float64
	log      *zap.Logger
}

// NewBuilder creates a builder. warnRate <= 0 selects DefaultWarnRate; a
// nil logger disables logging.
func NewBuilder(resolver *character.Resolver, policy UnresolvedPolicy, warnRate float64, log *zap.Logger) *Builder {
	if warnRate <= 0 {
		warnRate = DefaultWarnRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{resolver: resolver, policy: policy, warnRate: warnRate, log: log}
}

// Build emits one record per attributed, non-empty line. Line indexes
// restart per scene so record ids encode (episode, scene, line) and stay
// byte-identical across re-runs over unchanged input.
func (b *Builder) Build(lines []transcript.Line, info EpisodeInfo) ([]Record, BuildStats) {
	var (
		records   []Record
		stats     BuildStats
		lineIndex int
		lastScene = -1
	)

	stats.LinesIn = len(lines)

	for _, line := range lines {
		if line.SceneIndex != lastScene {
			lastScene = line.SceneIndex
			lineIndex = 0
		}

		if line.Text == "" {
			stats.DroppedEmpty++
			b.log.Debug("dropped empty utterance",
				zap.String("episode", info.Code),
				zap.Int("source_line", line.SourceLine))
			continue
		}

		speaker := line.Speaker
		name := character.Unknown
		if speaker != "" {
			res := b.resolver.Resolve(speaker)
			if res.Resolved() {
				name = res.Character
			} else {
				stats.Unresolved++
				b.log.Debug("unresolved speaker",
					zap.String("episode", info.Code),
					zap.String("raw", res.Raw),
					zap.Int("source_line", line.SourceLine))
				if b.policy == DropUnresolved {
					stats.DroppedUnres++
					continue
				}
			}
		} else {
			stats.Unresolved++
			b.log.Debug("unattributed line",
				zap.String("episode", info.Code),
				zap.Int("source_line", line.SourceLine))
			if b.policy == DropUnresolved {
				stats.DroppedUnres++
				continue
			}
		}

		records = append(records, Record{
			ID:           RecordID(info.Code, line.SceneIndex, lineIndex),
			Character:    name,
			Text:         line.Text,
			Stage:        line.Stage,
			EpisodeCode:  info.Code,
			Season:       info.Season,
			Episode:      info.Episode,
			EpisodeTitle: info.Title,
			Scene:        line.Scene,
			SceneIndex:   line.SceneIndex,
			LineIndex:    lineIndex,
		})
		lineIndex++
	}

	stats.RecordsOut = len(records)

	if rate := stats.UnresolvedRate(); rate > b.warnRate {
		b.log.Warn("high unresolved-speaker rate",
			zap.String("episode", info.Code),
			zap.Float64("rate", rate),
			zap.Int("unresolved", stats.Unresolved),
			zap.Int("lines", stats.LinesIn))
	}

	return records, stats
}
