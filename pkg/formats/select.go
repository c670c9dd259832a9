// Package formats picks one encoding out of the list a media item
// advertises. Selection is deterministic: the same descriptors and
// criteria always yield the same pick, with ties broken by the
// provider's original order.
package formats

import (
	"fmt"
	"log/slog"

	"wavecast-hq/tunegate/pkg/upstream"
)

// Criteria describes which encoding to pick. AudioOnly restricts the
// candidates to pure audio tracks; when false, muxed audio+video
// encodings are admitted as a fallback if the item advertises no pure
// audio track at all.
type Criteria struct {
	Quality   Quality
	AudioOnly bool
}

// NoFormatError indicates no advertised encoding satisfies the
// criteria. It is a request-side condition, not an upstream failure.
type NoFormatError struct {
	Criteria Criteria
	Total    int
}

func (e *NoFormatError) Error() string {
	return fmt.Sprintf("no encoding satisfies %s among %d advertised", e.Criteria.Quality, e.Total)
}

// Select picks the encoding matching the criteria. Candidates are the
// audio-only descriptors when any exist, otherwise the muxed ones that
// still carry audio; survivors are ranked by bitrate in the direction
// the quality names.
func Select(descriptors []upstream.EncodingDescriptor, criteria Criteria) (upstream.EncodingDescriptor, error) {
	candidates := FilterAudioCapable(descriptors, criteria.AudioOnly)
	if len(candidates) == 0 {
		return upstream.EncodingDescriptor{}, &NoFormatError{Criteria: criteria, Total: len(descriptors)}
	}

	best := candidates[0]
	for _, d := range candidates[1:] {
		if outranks(d, best, criteria.Quality) {
			best = d
		}
	}

	slog.Debug("selected encoding",
		"itag", best.Itag,
		"mime_type", best.MIMEType,
		"bitrate", best.Bitrate,
		"candidates", len(candidates),
	)
	return best, nil
}

// FilterAudioCapable returns the audio-only descriptors when any exist.
// Otherwise it returns the muxed descriptors that still carry audio,
// unless audioOnly suppresses that fallback.
func FilterAudioCapable(descriptors []upstream.EncodingDescriptor, audioOnly bool) []upstream.EncodingDescriptor {
	pure := make([]upstream.EncodingDescriptor, 0, len(descriptors))
	muxed := make([]upstream.EncodingDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		switch {
		case d.IsAudioOnly():
			pure = append(pure, d)
		case d.HasAudio():
			muxed = append(muxed, d)
		}
	}
	if len(pure) > 0 {
		return pure
	}
	if audioOnly {
		return nil
	}
	if len(muxed) > 0 {
		slog.Debug("no audio-only encoding advertised, falling back to muxed",
			"muxed", len(muxed),
		)
	}
	return muxed
}

// outranks reports whether a should replace b under the quality
// ranking. Equal bitrates keep b, so earlier descriptors win ties.
func outranks(a, b upstream.EncodingDescriptor, quality Quality) bool {
	if quality == LowestAudio {
		return a.Bitrate < b.Bitrate
	}
	return a.Bitrate > b.Bitrate
}
