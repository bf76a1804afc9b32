package transcript

import (
	"regexp"
	"strings"
)

// speakerRe matches "Speaker: dialogue" and "Speaker : dialogue". Speaker
// tokens start with an uppercase letter and may contain spaces, periods,
// apostrophes and hyphens ("Dwight K. Schrute", "Bob Vance, Vance
// Refrigeration" loses the suffix downstream, not here).
var speakerRe = regexp.MustCompile(`^([A-Z][a-zA-Z\s'.\-]*?)\s*:\s*(.*)$`)

// stageRe matches parenthesized stage directions embedded in an utterance.
var stageRe = regexp.MustCompile(`\([^)]*\)`)

// Normalize detects the structural convention of raw transcript text and
// parses it into ordered lines. Detection tries each format in order; the
// inline "Speaker: line" format is the fallback for anything unrecognized.
func Normalize(raw string) ([]Line, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyTranscript
	}

	for _, f := range formats() {
		if f.Detect(raw) {
			return f.Parse(raw)
		}
	}
	return InlineFormat{}.Parse(raw)
}

// formats returns the conventions with distinctive structure, most specific
// first. Inline is not listed; it is the fallback in Normalize.
func formats() []Format {
	return []Format{ForumFormat{}, BlockFormat{}}
}

// rawLine pairs a text line with its 1-based position in the source file.
type rawLine struct {
	text string
	num  int
}

func splitRaw(raw string) []rawLine {
	parts := strings.Split(raw, "\n")
	lines := make([]rawLine, len(parts))
	for i, p := range parts {
		lines[i] = rawLine{text: strings.TrimRight(p, "\r"), num: i + 1}
	}
	return lines
}

// isSceneMarker reports whether a line starts a new scene: bracketed
// markers like "[SCENE: Conference Room]" or short shouting-case headers
// without a colon ("INT. DUNDER MIFFLIN - DAY" style exports).
func isSceneMarker(line string) bool {
	if strings.HasPrefix(line, "[") {
		return true
	}
	if len(line) < 100 && line == strings.ToUpper(line) && line != strings.ToLower(line) && !strings.Contains(line, ":") {
		return true
	}
	return false
}

func sceneName(line string) string {
	name := strings.Trim(line, "[]")
	name = strings.TrimPrefix(name, "SCENE:")
	return strings.TrimSpace(name)
}

// splitStage separates parenthesized stage directions from the spoken text.
// Directions keep their parentheses and source order; the remaining text is
// re-collapsed to single spaces.
func splitStage(text string) (spoken, stage string) {
	directions := stageRe.FindAllString(text, -1)
	if len(directions) == 0 {
		return strings.TrimSpace(text), ""
	}
	spoken = stageRe.ReplaceAllString(text, " ")
	spoken = strings.Join(strings.Fields(spoken), " ")
	return spoken, strings.Join(directions, " ")
}

// isNoise reports whether an utterance carries no dialogue at all: runs of
// dashes used as separators in some scraped transcripts.
func isNoise(text string) bool {
	return strings.Trim(text, "- ") == ""
}

// parseLines is the shared core parser for inline-style lines. It tracks
// scene boundaries, merges multi-line continuations into one logical
// utterance, and keeps stray text as unattributed lines rather than
// dropping it.
func parseLines(lines []rawLine) []Line {
	var (
		out        []Line
		scene      string
		sceneIndex int
		seenMarker bool
	)

	flush := func(speaker, text string, src int) {
		spoken, stage := splitStage(text)
		if spoken == "" && stage == "" {
			return
		}
		if isNoise(spoken) {
			return
		}
		out = append(out, Line{
			Speaker:    speaker,
			Text:       spoken,
			Stage:      stage,
			Scene:      scene,
			SceneIndex: sceneIndex,
			SourceLine: src,
		})
	}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i].text)
		if line == "" {
			i++
			continue
		}

		if isSceneMarker(line) {
			if seenMarker || len(out) > 0 {
				sceneIndex++
			}
			scene = sceneName(line)
			seenMarker = true
			i++
			continue
		}

		m := speakerRe.FindStringSubmatch(line)
		if m == nil {
			// Not a dialogue line and not a marker: keep it, unattributed.
			flush("", line, lines[i].num)
			i++
			continue
		}

		speaker := strings.TrimSpace(m[1])
		src := lines[i].num
		parts := []string{}
		if m[2] != "" {
			parts = append(parts, strings.TrimSpace(m[2]))
		}

		// Collect continuation lines until a blank line, a new speaker, or
		// a scene marker.
		i++
		for i < len(lines) {
			next := strings.TrimSpace(lines[i].text)
			if next == "" {
				break
			}
			if speakerRe.MatchString(next) || isSceneMarker(next) {
				break
			}
			parts = append(parts, next)
			i++
		}

		flush(speaker, strings.Join(parts, " "), src)
	}

	return out
}
