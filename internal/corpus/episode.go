package corpus

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// episodeFileRe matches transcript filenames like "01x01", "01x01_Pilot",
// "09x24-25" and "09x24-25_AARM" (double episodes keep the combined code).
var episodeFileRe = regexp.MustCompile(`^(\d+)x(\d+(?:-\d+)?)(?:_(.+))?$`)

// ParseEpisodeFilename extracts episode metadata from a transcript
// filename. Underscores in the title part become spaces; a missing title
// falls back to "S<season>E<episode>".
func ParseEpisodeFilename(filename string) (EpisodeInfo, error) {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	m := episodeFileRe.FindStringSubmatch(name)
	if m == nil {
		return EpisodeInfo{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeInfo{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	episodeStr := m[2]
	first := episodeStr
	if idx := strings.Index(episodeStr, "-"); idx >= 0 {
		first = episodeStr[:idx]
	}
	episode, err := strconv.Atoi(first)
	if err != nil {
		return EpisodeInfo{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	title := strings.ReplaceAll(m[3], "_", " ")
	if title == "" {
		title = fmt.Sprintf("S%dE%d", season, episode)
	}

	return EpisodeInfo{
		Code:    m[1] + "x" + episodeStr,
		Season:  season,
		Episode: episode,
		Title:   title,
	}, nil
}
