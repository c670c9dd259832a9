package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// chunkReader hands out one chunk per Read call.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

type errReader struct {
	err error
}

func (r errReader) Read(p []byte) (int, error) {
	return 0, r.err
}

// failingWriter accepts the first write and fails the rest, standing in
// for a client that dropped the connection.
type failingWriter struct {
	http.ResponseWriter
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("write tcp: broken pipe")
	}
	return w.ResponseWriter.Write(p)
}

// countingFlusher records how often the relay flushes.
type countingFlusher struct {
	http.ResponseWriter
	flushes int
}

func (f *countingFlusher) Flush() {
	f.flushes++
	if fl, ok := f.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

func TestRelay_Completed(t *testing.T) {
	rec := httptest.NewRecorder()
	src := &Source{
		Body:          strings.NewReader("opus audio payload"),
		ContentType:   "audio/webm",
		ContentLength: 18,
	}

	outcome := Relay(context.Background(), rec, src, Inline("audio/webm"), Options{})
	if outcome.State != Completed {
		t.Fatalf("expected Completed, got %v (err=%v)", outcome.State, outcome.Err)
	}
	if outcome.BytesSent != 18 {
		t.Errorf("expected 18 bytes sent, got %d", outcome.BytesSent)
	}
	if outcome.Err != nil {
		t.Errorf("expected no error, got %v", outcome.Err)
	}
	if got := rec.Body.String(); got != "opus audio payload" {
		t.Errorf("unexpected body: %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/webm" {
		t.Errorf("expected audio/webm content type, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "inline" {
		t.Errorf("expected inline disposition, got %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "18" {
		t.Errorf("expected content length 18, got %q", got)
	}
}

func TestRelay_Attachment(t *testing.T) {
	rec := httptest.NewRecorder()
	src := &Source{Body: strings.NewReader("mp3 bytes")}

	outcome := Relay(context.Background(), rec, src, Attachment("My Track.mp3"), Options{})
	if outcome.State != Completed {
		t.Fatalf("expected Completed, got %v", outcome.State)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("expected octet-stream, got %q", got)
	}
	want := `attachment; filename="My Track.mp3"`
	if got := rec.Header().Get("Content-Disposition"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRelay_FailedBeforeBody(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New("upstream refused")
	src := &Source{Body: errReader{err: cause}}

	outcome := Relay(context.Background(), rec, src, Inline("audio/webm"), Options{})
	if outcome.State != FailedBeforeBody {
		t.Fatalf("expected FailedBeforeBody, got %v", outcome.State)
	}
	if !errors.Is(outcome.Err, cause) {
		t.Errorf("expected the upstream error, got %v", outcome.Err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected untouched body, got %d bytes", rec.Body.Len())
	}
	if got := rec.Header().Get("Content-Type"); got != "" {
		t.Errorf("expected no headers written, got content type %q", got)
	}
}

func TestRelay_NilSource(t *testing.T) {
	rec := httptest.NewRecorder()
	outcome := Relay(context.Background(), rec, nil, Inline("audio/webm"), Options{})
	if outcome.State != FailedBeforeBody {
		t.Fatalf("expected FailedBeforeBody, got %v", outcome.State)
	}
}

func TestRelay_AbortedMidStream(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New("upstream reset")
	src := &Source{
		Body: io.MultiReader(strings.NewReader("partial "), errReader{err: cause}),
	}

	outcome := Relay(context.Background(), rec, src, Inline("audio/webm"), Options{})
	if outcome.State != AbortedMidStream {
		t.Fatalf("expected AbortedMidStream, got %v", outcome.State)
	}
	if !errors.Is(outcome.Err, cause) {
		t.Errorf("expected the upstream error, got %v", outcome.Err)
	}
	if outcome.BytesSent != 8 {
		t.Errorf("expected 8 bytes sent before the abort, got %d", outcome.BytesSent)
	}
	if got := rec.Body.String(); got != "partial " {
		t.Errorf("expected exactly the flushed bytes, got %q", got)
	}
}

func TestRelay_ClientGone_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &failingWriter{ResponseWriter: rec}
	src := &Source{
		Body: &chunkReader{chunks: [][]byte{[]byte("first"), []byte("second")}},
	}

	outcome := Relay(context.Background(), w, src, Inline("audio/webm"), Options{})
	if outcome.State != ClientGone {
		t.Fatalf("expected ClientGone, got %v", outcome.State)
	}
	if outcome.BytesSent != 5 {
		t.Errorf("expected 5 bytes sent, got %d", outcome.BytesSent)
	}
	if outcome.Err == nil {
		t.Error("expected the write error to be reported")
	}
}

func TestRelay_ClientGone_ContextCanceled(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &Source{
		Body: &chunkReader{chunks: [][]byte{[]byte("first"), []byte("second")}},
	}

	outcome := Relay(ctx, rec, src, Inline("audio/webm"), Options{})
	if outcome.State != ClientGone {
		t.Fatalf("expected ClientGone, got %v", outcome.State)
	}
	// The first chunk goes out before the cancellation is observed.
	if outcome.BytesSent != 5 {
		t.Errorf("expected 5 bytes sent, got %d", outcome.BytesSent)
	}
	if !errors.Is(outcome.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", outcome.Err)
	}
}

func TestRelay_CanceledBeforeFirstByte(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &Source{Body: errReader{err: context.Canceled}}

	outcome := Relay(ctx, rec, src, Inline("audio/webm"), Options{})
	if outcome.State != ClientGone {
		t.Fatalf("expected ClientGone, got %v", outcome.State)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected no body, got %d bytes", rec.Body.Len())
	}
}

func TestRelay_FlushesEachChunk(t *testing.T) {
	rec := httptest.NewRecorder()
	f := &countingFlusher{ResponseWriter: rec}
	src := &Source{
		Body: &chunkReader{chunks: [][]byte{[]byte("one"), []byte("two"), []byte("three")}},
	}

	outcome := Relay(context.Background(), f, src, Inline("audio/webm"), Options{})
	if outcome.State != Completed {
		t.Fatalf("expected Completed, got %v", outcome.State)
	}
	if f.flushes < 3 {
		t.Errorf("expected a flush per chunk, got %d flushes", f.flushes)
	}
	if got := rec.Body.String(); got != "onetwothree" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestRelay_EmptyStream(t *testing.T) {
	rec := httptest.NewRecorder()
	src := &Source{Body: strings.NewReader(""), ContentType: "audio/webm"}

	outcome := Relay(context.Background(), rec, src, Inline("audio/webm"), Options{})
	if outcome.State != Completed {
		t.Fatalf("expected Completed, got %v", outcome.State)
	}
	if outcome.BytesSent != 0 {
		t.Errorf("expected 0 bytes, got %d", outcome.BytesSent)
	}
	// Headers still go out for an empty but successful stream.
	if got := rec.Header().Get("Content-Type"); got != "audio/webm" {
		t.Errorf("expected headers written, got content type %q", got)
	}
}

func TestRelay_SmallBuffer(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := strings.Repeat("x", 1000)
	src := &Source{Body: strings.NewReader(payload)}

	outcome := Relay(context.Background(), rec, src, Inline("audio/webm"), Options{BufferSize: 16})
	if outcome.State != Completed {
		t.Fatalf("expected Completed, got %v", outcome.State)
	}
	if outcome.BytesSent != 1000 {
		t.Errorf("expected 1000 bytes, got %d", outcome.BytesSent)
	}
	if rec.Body.String() != payload {
		t.Error("body mismatch after chunked copy")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Completed, "completed"},
		{FailedBeforeBody, "failed_before_body"},
		{AbortedMidStream, "aborted_mid_stream"},
		{ClientGone, "client_gone"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d): expected %q, got %q", tt.state, tt.want, got)
		}
	}
}
