package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"wavecast-hq/tunegate/pkg/upstream"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]string{"hello": "world"})

	if rec.Code != 200 {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("expected hello=world, got %v", body)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 400, ErrKindInvalidRequest, "search query is required")

	if rec.Code != 400 {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != ErrKindInvalidRequest {
		t.Errorf("expected error kind %q, got %q", ErrKindInvalidRequest, body.Error)
	}
	if body.Message != "search query is required" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestErrorBodyShape(t *testing.T) {
	// The failure envelope has exactly two fields, error and message.
	data, err := json.Marshal(&ErrorBody{Error: "not_found", Message: "gone"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(raw) != 2 {
		t.Errorf("expected 2 fields, got %d: %v", len(raw), raw)
	}
	if _, ok := raw["error"]; !ok {
		t.Error("missing error field")
	}
	if _, ok := raw["message"]; !ok {
		t.Error("missing message field")
	}
}

func TestNewMediaInfo(t *testing.T) {
	meta := &upstream.Metadata{
		ID:              "dQw4w9WgXcQ",
		Title:           "Test Track",
		Author:          "Test Channel",
		DurationSeconds: 213,
		Description:     "A description",
		Thumbnail:       "https://img.example.com/dQw4w9WgXcQ.jpg",
		Views:           1_000_000,
	}
	descriptors := []upstream.EncodingDescriptor{
		{Itag: 251, MIMEType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioQuality: "AUDIO_QUALITY_HIGH", ContentLength: 3_400_000},
		{Itag: 18, MIMEType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioQuality: "AUDIO_QUALITY_MEDIUM", QualityLabel: "360p"},
		{Itag: 137, MIMEType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000, QualityLabel: "1080p"},
	}

	info := NewMediaInfo(meta, descriptors)

	if info.ID != "dQw4w9WgXcQ" || info.Title != "Test Track" {
		t.Errorf("metadata not carried: %+v", info)
	}
	if info.Duration != 213 {
		t.Errorf("expected duration 213, got %d", info.Duration)
	}
	if len(info.Formats) != 3 {
		t.Fatalf("expected 3 formats, got %d", len(info.Formats))
	}

	// Provider order is preserved.
	if info.Formats[0].Itag != 251 || info.Formats[1].Itag != 18 || info.Formats[2].Itag != 137 {
		t.Errorf("format order changed: %+v", info.Formats)
	}

	if !info.Formats[0].AudioOnly || !info.Formats[0].HasAudio {
		t.Errorf("itag 251 should be audio only: %+v", info.Formats[0])
	}
	if info.Formats[1].AudioOnly || !info.Formats[1].HasAudio {
		t.Errorf("itag 18 should be muxed with audio: %+v", info.Formats[1])
	}
	if info.Formats[2].HasAudio {
		t.Errorf("itag 137 should be video only: %+v", info.Formats[2])
	}
}

func TestNewMediaInfoNoFormats(t *testing.T) {
	info := NewMediaInfo(&upstream.Metadata{ID: "abc123def45"}, nil)

	if info.Formats == nil {
		t.Error("formats should be an empty slice, not nil")
	}
	if len(info.Formats) != 0 {
		t.Errorf("expected no formats, got %d", len(info.Formats))
	}

	// An empty list marshals as [], not null.
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["formats"].([]any); !ok {
		t.Errorf("formats did not marshal as an array: %v", raw["formats"])
	}
}
