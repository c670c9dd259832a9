package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"wavecast-hq/tunegate/pkg/upstream"
)

// Error kinds returned in the error field of failure bodies. Clients
// switch on these instead of parsing messages.
const (
	ErrKindInvalidRequest   = "invalid_request"
	ErrKindRateLimited      = "rate_limit_exceeded"
	ErrKindNotFound         = "not_found"
	ErrKindNoMatchingFormat = "no_matching_format"
	ErrKindUpstream         = "upstream_error"
	ErrKindInternal         = "internal_error"
)

// ErrorBody is the failure envelope. Every non-2xx JSON response uses
// this shape.
type ErrorBody struct {
	// Error is a machine-readable kind, one of the ErrKind constants.
	Error string `json:"error"`

	// Message is the human-readable detail.
	Message string `json:"message"`
}

// SearchResponse is the success envelope for the search route.
type SearchResponse struct {
	Success bool                    `json:"success"`
	Results []upstream.SearchResult `json:"results"`
}

// TrendingResponse is the success envelope for the trending route.
type TrendingResponse struct {
	Success  bool                    `json:"success"`
	Trending []upstream.SearchResult `json:"trending"`
}

// InfoResponse is the success envelope for the info route.
type InfoResponse struct {
	Success bool      `json:"success"`
	Info    MediaInfo `json:"info"`
}

// MediaInfo is the metadata document served by the info route. Duration
// is in seconds. Formats lists the provider's advertised encodings
// without their fetch URLs; bytes leave the gateway only through the
// stream and download routes.
type MediaInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Duration    int64        `json:"duration"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	Views       int64        `json:"views"`
	Formats     []FormatInfo `json:"formats"`
}

// FormatInfo describes one advertised encoding.
type FormatInfo struct {
	Itag          int    `json:"itag"`
	MIMEType      string `json:"mime_type"`
	Bitrate       int64  `json:"bitrate"`
	AudioQuality  string `json:"audio_quality,omitempty"`
	QualityLabel  string `json:"quality_label,omitempty"`
	ContentLength int64  `json:"content_length,omitempty"`
	HasAudio      bool   `json:"has_audio"`
	AudioOnly     bool   `json:"audio_only"`
}

// NewMediaInfo builds the info document from resolved metadata and the
// provider's encoding list, preserving the provider's order.
func NewMediaInfo(meta *upstream.Metadata, descriptors []upstream.EncodingDescriptor) MediaInfo {
	formatList := make([]FormatInfo, 0, len(descriptors))
	for _, d := range descriptors {
		formatList = append(formatList, FormatInfo{
			Itag:          d.Itag,
			MIMEType:      d.MIMEType,
			Bitrate:       d.Bitrate,
			AudioQuality:  d.AudioQuality,
			QualityLabel:  d.QualityLabel,
			ContentLength: d.ContentLength,
			HasAudio:      d.HasAudio(),
			AudioOnly:     d.IsAudioOnly(),
		})
	}
	return MediaInfo{
		ID:          meta.ID,
		Title:       meta.Title,
		Author:      meta.Author,
		Duration:    meta.DurationSeconds,
		Description: meta.Description,
		Thumbnail:   meta.Thumbnail,
		Views:       meta.Views,
		Formats:     formatList,
	}
}

// WriteJSON writes v with the given status. Encoding failures after the
// header has gone out cannot be repaired, so they are only logged.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

// WriteError writes the failure envelope.
func WriteError(w http.ResponseWriter, status int, kind, message string) {
	WriteJSON(w, status, &ErrorBody{Error: kind, Message: message})
}
