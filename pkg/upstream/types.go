package upstream

import (
	"io"
	"strings"
)

// Metadata describes a single media item as reported by the provider.
type Metadata struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	DurationSeconds int64  `json:"duration_seconds"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	Views           int64  `json:"views"`
}

// EncodingDescriptor describes one encoding the provider advertises for
// a media item. Bitrate is the average bitrate when the provider reports
// one, otherwise the nominal bitrate.
type EncodingDescriptor struct {
	Itag          int    `json:"itag"`
	URL           string `json:"url"`
	MIMEType      string `json:"mime_type"`
	Bitrate       int64  `json:"bitrate"`
	AudioQuality  string `json:"audio_quality,omitempty"`
	QualityLabel  string `json:"quality_label,omitempty"`
	ContentLength int64  `json:"content_length,omitempty"`
}

// HasAudio reports whether the encoding carries an audio track. Video
// only encodings advertise no audio quality.
func (d EncodingDescriptor) HasAudio() bool {
	return d.AudioQuality != "" || d.IsAudioOnly()
}

// IsAudioOnly reports whether the encoding is an audio track without
// video.
func (d EncodingDescriptor) IsAudioOnly() bool {
	return strings.HasPrefix(d.MIMEType, "audio/")
}

// Container returns the container name from the MIME type, for example
// "webm" from "audio/webm; codecs=\"opus\"". Empty when the MIME type
// is missing or malformed.
func (d EncodingDescriptor) Container() string {
	mime, _, _ := strings.Cut(d.MIMEType, ";")
	_, container, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok {
		return ""
	}
	return container
}

// SearchResult is a single entry from the provider's search surface.
// Duration and Views keep the provider's display strings.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	Views     string `json:"views"`
}

// Stream is an open byte stream for one encoding. The caller owns Body
// and must close it.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	StatusCode    int
}
