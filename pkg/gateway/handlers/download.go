package handlers

import (
	"net/http"
	"strings"

	"wavecast-hq/tunegate/pkg/formats"
	"wavecast-hq/tunegate/pkg/relay"
)

// maxFilenameRunes bounds the sanitized title in a download filename.
const maxFilenameRunes = 120

// DownloadHandler serves /api/download: the same relay as /api/stream
// but presented as a file attachment named after the media title. The
// bytes are never transcoded; the format parameter names the file only.
type DownloadHandler struct {
	deps           *Deps
	opts           StreamOptions
	defaultQuality formats.Quality
}

// NewDownloadHandler creates the download handler. The configured
// default format is normalized once here.
func NewDownloadHandler(deps *Deps, opts StreamOptions) *DownloadHandler {
	quality, _ := formats.ParseQuality(opts.DefaultQuality)
	opts.DefaultDownloadFormat = sanitizeFormat(opts.DefaultDownloadFormat, "mp3")
	return &DownloadHandler{deps: deps, opts: opts, defaultQuality: quality}
}

// ServeHTTP implements http.Handler.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	format := sanitizeFormat(r.URL.Query().Get("format"), h.opts.DefaultDownloadFormat)

	media, ok := openMedia(w, r, h.deps, formats.Criteria{Quality: h.defaultQuality}, h.opts.Sticky, "/api/download")
	if !ok {
		return
	}
	defer media.stream.Body.Close()

	filename := sanitizeFilename(media.meta.Title) + "." + format
	relayMedia(w, r, h.deps, "download", media, relay.Attachment(filename), h.opts.BufferSize)
}

// sanitizeFilename makes a media title safe for a Content-Disposition
// filename: control characters and filesystem separators are dropped,
// whitespace collapses to single spaces, and long titles are cut at a
// rune boundary. An empty result becomes "audio".
func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 0x20 || r == 0x7f:
		case strings.ContainsRune(`/\:*?"<>|`, r):
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if name == "" {
		return "audio"
	}
	return name
}

// sanitizeFormat reduces the format parameter to a plain lowercase
// extension. Anything outside [a-z0-9] is dropped; an empty result
// falls back to def, then to "mp3".
func sanitizeFormat(raw, def string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	if def != "" {
		return def
	}
	return "mp3"
}
