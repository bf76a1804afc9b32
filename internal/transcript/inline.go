package transcript

// InlineFormat parses the common "Speaker: dialogue" convention, with the
// dialogue either on the same line or continued on the following lines.
// It is the fallback format for anything the other conventions do not
// claim, so Detect always reports true.
type InlineFormat struct{}

func (InlineFormat) Name() string { return "inline" }

func (InlineFormat) Detect(raw string) bool { return true }

func (InlineFormat) Parse(raw string) ([]Line, error) {
	lines := parseLines(splitRaw(raw))
	if len(lines) == 0 {
		return nil, ErrEmptyTranscript
	}
	return lines, nil
}
