// Package relay copies an upstream media stream to an HTTP response
// without buffering the payload. The first chunk is read before any
// header is written, so an upstream that dies immediately still leaves
// the response free for a JSON error. After headers, every write is
// flushed so playback starts while the transfer runs, and backpressure
// comes from the blocking write to the client connection.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBufferSize is the chunk size used when Options does not set
// one.
const DefaultBufferSize = 32 * 1024

// State classifies how a relay ended.
type State int

const (
	// Completed means the upstream stream was copied in full.
	Completed State = iota

	// FailedBeforeBody means the upstream failed before any header or
	// byte was written. The response is untouched and the caller can
	// still answer with an error body.
	FailedBeforeBody

	// AbortedMidStream means the upstream failed after bytes were
	// flushed. The response cannot be repaired; the caller should tear
	// the connection down rather than append a trailing body.
	AbortedMidStream

	// ClientGone means the client went away during the transfer. It is
	// an observation, not an application failure.
	ClientGone
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case FailedBeforeBody:
		return "failed_before_body"
	case AbortedMidStream:
		return "aborted_mid_stream"
	case ClientGone:
		return "client_gone"
	default:
		return "unknown"
	}
}

// Source is the upstream stream to copy. The caller keeps ownership of
// Body and closes it after Relay returns. ContentLength is advertised
// to the client when positive.
type Source struct {
	Body          io.Reader
	ContentType   string
	ContentLength int64
}

// Disposition controls the headers written before the body. A non-empty
// Filename turns the response into a download.
type Disposition struct {
	ContentType string
	Filename    string
}

// Inline builds the disposition for in-browser playback.
func Inline(contentType string) Disposition {
	return Disposition{ContentType: contentType}
}

// Attachment builds the disposition for a file download.
func Attachment(filename string) Disposition {
	return Disposition{
		ContentType: "application/octet-stream",
		Filename:    filename,
	}
}

func (d Disposition) apply(h http.Header, contentLength int64) {
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	if d.Filename != "" {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	} else {
		h.Set("Content-Disposition", "inline")
	}
	if contentLength > 0 {
		h.Set("Content-Length", strconv.FormatInt(contentLength, 10))
	}
}

// Options tunes a relay.
type Options struct {
	// BufferSize is the copy chunk size. Zero means DefaultBufferSize.
	BufferSize int
}

// Outcome reports how a relay ended. Err is set for every state except
// Completed.
type Outcome struct {
	State     State
	BytesSent int64
	Duration  time.Duration
	Err       error
}

// Relay copies src to w under the given disposition. ctx is the
// client's request context; its cancellation is treated as the client
// leaving. Relay never writes a body after a failure, so AbortedMidStream
// responses end exactly at the last flushed byte.
func Relay(ctx context.Context, w http.ResponseWriter, src *Source, disp Disposition, opts Options) Outcome {
	start := time.Now()
	if src == nil || src.Body == nil {
		return Outcome{
			State:    FailedBeforeBody,
			Duration: time.Since(start),
			Err:      errors.New("relay: no source body"),
		}
	}

	size := opts.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	buf := make([]byte, size)

	// First chunk before headers.
	n, err := readChunk(src.Body, buf)
	if n == 0 && err != nil && err != io.EOF {
		if ctx.Err() != nil {
			return Outcome{State: ClientGone, Duration: time.Since(start), Err: ctx.Err()}
		}
		return Outcome{State: FailedBeforeBody, Duration: time.Since(start), Err: err}
	}

	disp.apply(w.Header(), src.ContentLength)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	var sent int64
	for {
		if n > 0 {
			written, werr := w.Write(buf[:n])
			sent += int64(written)
			if werr != nil {
				return Outcome{State: ClientGone, BytesSent: sent, Duration: time.Since(start), Err: werr}
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return Outcome{State: Completed, BytesSent: sent, Duration: time.Since(start)}
		}
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{State: ClientGone, BytesSent: sent, Duration: time.Since(start), Err: ctx.Err()}
			}
			return Outcome{State: AbortedMidStream, BytesSent: sent, Duration: time.Since(start), Err: err}
		}
		select {
		case <-ctx.Done():
			return Outcome{State: ClientGone, BytesSent: sent, Duration: time.Since(start), Err: ctx.Err()}
		default:
		}
		n, err = readChunk(src.Body, buf)
	}
}

// readChunk reads until it has bytes or a terminal condition, skipping
// the empty (0, nil) reads io.Reader permits.
func readChunk(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}
