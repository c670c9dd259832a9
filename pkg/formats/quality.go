package formats

import (
	"fmt"
	"strings"
)

// Quality names a ranking direction over audio bitrates.
type Quality int

const (
	// HighestAudio selects the audio-capable encoding with the highest
	// bitrate. It is the default.
	HighestAudio Quality = iota

	// LowestAudio selects the lowest bitrate, for constrained clients.
	LowestAudio
)

func (q Quality) String() string {
	if q == LowestAudio {
		return "lowest audio"
	}
	return "highest audio"
}

// UnknownQualityError indicates a quality parameter that names no known
// ranking.
type UnknownQualityError struct {
	Quality string
}

func (e *UnknownQualityError) Error() string {
	return fmt.Sprintf("unknown quality %q", e.Quality)
}

// ParseQuality maps a request's quality parameter to a Quality. Case
// and whitespace are ignored, so "highest audio", "highestaudio" and
// "Highest Audio" are equivalent. The empty string means HighestAudio.
func ParseQuality(raw string) (Quality, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	switch normalized {
	case "", "highestaudio":
		return HighestAudio, nil
	case "lowestaudio":
		return LowestAudio, nil
	}
	return HighestAudio, &UnknownQualityError{Quality: raw}
}
