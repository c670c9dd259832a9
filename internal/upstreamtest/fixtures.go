package upstreamtest

import (
	"fmt"
	"net/http"
)

// PlayerResponse builds a playable player document with the given
// details and formats.
func PlayerResponse(id, title, author string, formats ...map[string]any) map[string]any {
	if formats == nil {
		formats = []map[string]any{}
	}
	return map[string]any{
		"playabilityStatus": map[string]any{
			"status": "OK",
		},
		"videoDetails": map[string]any{
			"videoId":          id,
			"title":            title,
			"author":           author,
			"lengthSeconds":    "245",
			"shortDescription": "A test track.",
			"viewCount":        "1500000",
			"thumbnail": map[string]any{
				"thumbnails": []any{
					map[string]any{"url": "https://img.example.com/" + id + "/small.jpg", "width": 120, "height": 90},
					map[string]any{"url": "https://img.example.com/" + id + "/large.jpg", "width": 640, "height": 480},
				},
			},
		},
		"streamingData": map[string]any{
			"formats":         []any{},
			"adaptiveFormats": toAnySlice(formats),
		},
	}
}

// UnplayableResponse builds a player document with a non-OK
// playability status.
func UnplayableResponse(status, reason string) map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{
			"status": status,
			"reason": reason,
		},
	}
}

// AudioFormat builds an audio-only adaptive format entry.
func AudioFormat(itag int, url string, bitrate int64, quality string) map[string]any {
	return map[string]any{
		"itag":           itag,
		"url":            url,
		"mimeType":       `audio/webm; codecs="opus"`,
		"bitrate":        bitrate,
		"averageBitrate": bitrate,
		"contentLength":  "1048576",
		"audioQuality":   quality,
	}
}

// VideoFormat builds a video-only adaptive format entry.
func VideoFormat(itag int, url string, bitrate int64, label string) map[string]any {
	return map[string]any{
		"itag":           itag,
		"url":            url,
		"mimeType":       `video/mp4; codecs="avc1.4d401f"`,
		"bitrate":        bitrate,
		"averageBitrate": bitrate,
		"contentLength":  "8388608",
		"qualityLabel":   label,
	}
}

// MuxedFormat builds a combined audio and video format entry.
func MuxedFormat(itag int, url string, bitrate int64, label string) map[string]any {
	f := VideoFormat(itag, url, bitrate, label)
	f["audioQuality"] = "AUDIO_QUALITY_MEDIUM"
	return f
}

// CipherFormat builds a format entry without a direct URL, as the
// provider serves for protected media.
func CipherFormat(itag int) map[string]any {
	return map[string]any{
		"itag":            itag,
		"mimeType":        `audio/mp4; codecs="mp4a.40.2"`,
		"bitrate":         int64(128000),
		"signatureCipher": "s=abcdef&url=",
	}
}

// SearchResponse wraps renderer items in the provider's search
// document layout.
func SearchResponse(items ...map[string]any) map[string]any {
	return map[string]any{
		"contents": map[string]any{
			"sectionListRenderer": map[string]any{
				"contents": []any{
					map[string]any{
						"itemSectionRenderer": map[string]any{
							"contents": toAnySlice(items),
						},
					},
				},
			},
		},
	}
}

// SearchItem builds one videoRenderer entry.
func SearchItem(id, title, author, length, views string) map[string]any {
	return map[string]any{
		"videoRenderer": map[string]any{
			"videoId": id,
			"title": map[string]any{
				"runs": []any{map[string]any{"text": title}},
			},
			"ownerText": map[string]any{
				"runs": []any{map[string]any{"text": author}},
			},
			"lengthText": map[string]any{
				"simpleText": length,
			},
			"viewCountText": map[string]any{
				"simpleText": views,
			},
			"thumbnail": map[string]any{
				"thumbnails": []any{
					map[string]any{"url": "https://img.example.com/" + id + "/default.jpg"},
					map[string]any{"url": "https://img.example.com/" + id + "/hq.jpg"},
				},
			},
		},
	}
}

// ErrorBody builds the provider's error envelope.
func ErrorBody(code int, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"status":  http.StatusText(code),
		},
	}
}

// ErrorResponse builds a Response carrying the provider's error
// envelope.
func ErrorResponse(code int, message string) Response {
	return Response{
		StatusCode: code,
		Body:       ErrorBody(code, message),
	}
}

// StreamResponse builds a Response serving raw media bytes.
func StreamResponse(contentType string, body []byte) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", len(body)),
		},
	}
}

func toAnySlice(items []map[string]any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
