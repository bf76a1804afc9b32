package transcript

import "strings"

// BlockFormat parses the older screenplay-style export where the speaker
// sits on its own line and the dialogue follows on lines prefixed with a
// colon:
//
//	Michael
//	: All right Jim. Your quarterlies look very good.
//	Jim
//	: Oh, I told you. I couldn't close it.
//
// The block is rewritten into inline "Speaker: dialogue" lines and then
// parsed by the shared core.
type BlockFormat struct{}

func (BlockFormat) Name() string { return "block" }

// Detect looks for dialogue lines that start with a colon, which never
// happens in the inline convention.
func (BlockFormat) Detect(raw string) bool {
	count := 0
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func (BlockFormat) Parse(raw string) ([]Line, error) {
	lines := parseLines(joinBlocks(splitRaw(raw)))
	if len(lines) == 0 {
		return nil, ErrEmptyTranscript
	}
	return lines, nil
}

// joinBlocks merges "name line + colon lines" pairs into single inline
// lines, keeping the speaker line's source number. Lines that do not fit
// the pattern pass through untouched.
func joinBlocks(lines []rawLine) []rawLine {
	var out []rawLine

	i := 0
	for i < len(lines) {
		cur := strings.TrimSpace(lines[i].text)

		if i+1 < len(lines) && cur != "" && !strings.Contains(cur, ":") {
			next := strings.TrimSpace(lines[i+1].text)
			if strings.HasPrefix(next, ":") {
				parts := []string{strings.TrimSpace(strings.TrimPrefix(next, ":"))}
				j := i + 2
				for j < len(lines) {
					peek := strings.TrimSpace(lines[j].text)
					if peek == "" || strings.HasPrefix(peek, ":") {
						break
					}
					// A name line for the next block ends this dialogue.
					if j+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j+1].text), ":") {
						break
					}
					parts = append(parts, peek)
					j++
				}
				out = append(out, rawLine{
					text: cur + ": " + strings.Join(parts, " "),
					num:  lines[i].num,
				})
				i = j
				continue
			}
		}

		out = append(out, lines[i])
		i++
	}

	return out
}
