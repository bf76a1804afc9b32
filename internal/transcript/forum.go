package transcript

import (
	"regexp"
	"strings"
)

// Forum boilerplate patterns: page headers, quote attribution lines, and
// signature separators followed by the poster's signature.
var (
	pageHeaderRe = regexp.MustCompile(`(?i)^page \d+ of \d+$`)
	quoteAttrRe  = regexp.MustCompile(`(?i)^(quote:|originally posted by\b|posted by\b|re:)`)
	signatureRe  = regexp.MustCompile(`^(_{4,}|-{2,3})$`)
)

// ForumFormat handles transcripts scraped from forum threads: inline
// dialogue wrapped in quote markers, page headers, and post signatures.
// Boilerplate is stripped and the remainder goes through the inline parser.
type ForumFormat struct{}

func (ForumFormat) Name() string { return "forum" }

func (ForumFormat) Detect(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "> ") || pageHeaderRe.MatchString(t) || quoteAttrRe.MatchString(t) {
			return true
		}
	}
	return false
}

func (ForumFormat) Parse(raw string) ([]Line, error) {
	lines := parseLines(stripBoilerplate(splitRaw(raw)))
	if len(lines) == 0 {
		return nil, ErrEmptyTranscript
	}
	return lines, nil
}

// stripBoilerplate removes forum chrome: quote prefixes are unwrapped,
// header/attribution lines are dropped, and everything between a signature
// separator and the next blank line is discarded.
func stripBoilerplate(lines []rawLine) []rawLine {
	var out []rawLine

	inSignature := false
	for _, line := range lines {
		t := strings.TrimSpace(line.text)

		if inSignature {
			if t == "" {
				inSignature = false
			}
			continue
		}

		switch {
		case signatureRe.MatchString(t):
			inSignature = true
		case pageHeaderRe.MatchString(t), quoteAttrRe.MatchString(t):
			// dropped
		case strings.HasPrefix(t, ">"):
			out = append(out, rawLine{
				text: strings.TrimSpace(strings.TrimLeft(t, "> ")),
				num:  line.num,
			})
		default:
			out = append(out, line)
		}
	}

	return out
}
