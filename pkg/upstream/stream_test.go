package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"wavecast-hq/tunegate/internal/upstreamtest"
)

func TestOpenStream(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	media := bytes.Repeat([]byte("opus"), 1024)
	mock.SetResponse("/media/high", upstreamtest.StreamResponse("audio/webm", media))

	client := testClient(t, mock)
	desc := EncodingDescriptor{
		Itag:     251,
		URL:      mock.URL() + "/media/high",
		MIMEType: `audio/webm; codecs="opus"`,
	}
	stream, err := client.OpenStream(context.Background(), desc, nil)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	defer stream.Body.Close()

	if stream.ContentType != "audio/webm" {
		t.Errorf("expected content type audio/webm, got %q", stream.ContentType)
	}
	if stream.ContentLength != int64(len(media)) {
		t.Errorf("expected content length %d, got %d", len(media), stream.ContentLength)
	}

	got, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	if !bytes.Equal(got, media) {
		t.Errorf("stream body mismatch: got %d bytes", len(got))
	}

	req, _ := mock.LastRequest()
	if got := req.Header.Get("User-Agent"); got != "test-agent/1.0" {
		t.Errorf("expected the configured identity on stream requests, got %q", got)
	}
}

func TestOpenStream_EmptyURL(t *testing.T) {
	client := testClientNoPool(t)
	_, err := client.OpenStream(context.Background(), EncodingDescriptor{Itag: 251}, nil)
	if err == nil {
		t.Fatal("expected error for descriptor without URL")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestOpenStream_UpstreamError(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	mock.SetResponse("/media/gone", upstreamtest.ErrorResponse(410, "stream URL expired"))

	client := testClient(t, mock)
	_, err := client.OpenStream(context.Background(), EncodingDescriptor{
		Itag: 251,
		URL:  mock.URL() + "/media/gone",
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if uerr.StatusCode != 410 {
		t.Errorf("expected status 410, got %d", uerr.StatusCode)
	}
	if uerr.Message != "stream URL expired" {
		t.Errorf("expected the upstream message, got %q", uerr.Message)
	}
}

func TestOpenStream_ChunkedBody(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	mock.SetResponse("/media/chunked", upstreamtest.Response{
		Chunks: [][]byte{[]byte("first"), []byte("second"), []byte("third")},
	})

	client := testClient(t, mock)
	stream, err := client.OpenStream(context.Background(), EncodingDescriptor{
		Itag: 251,
		URL:  mock.URL() + "/media/chunked",
	}, nil)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	defer stream.Body.Close()

	got, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	if string(got) != "firstsecondthird" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestOpenStream_CancelAbandonsTransfer(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	mock.SetResponse("/media/slow", upstreamtest.Response{
		Chunks:     [][]byte{[]byte("first"), []byte("never")},
		ChunkDelay: 500 * time.Millisecond,
	})

	client := testClient(t, mock)
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := client.OpenStream(ctx, EncodingDescriptor{
		Itag: 251,
		URL:  mock.URL() + "/media/slow",
	}, nil)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	defer stream.Body.Close()

	buf := make([]byte, 5)
	if _, err := io.ReadFull(stream.Body, buf); err != nil {
		t.Fatalf("failed to read first chunk: %v", err)
	}
	cancel()

	if _, err := io.ReadAll(stream.Body); err == nil {
		t.Fatal("expected read to fail after cancellation")
	}
}
