// Package upstreamtest provides a mock media provider for tests: an
// HTTP server standing in for both the provider's API and its content
// hosts, plus builders for the JSON documents the provider serves.
package upstreamtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a stand-in for the media provider. Paths are registered
// with SetResponse; everything else answers 404.
type Server struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []RecordedRequest
}

// Response configures the answer for one path.
type Response struct {
	StatusCode int
	Body       any
	Headers    map[string]string
	Delay      time.Duration

	// Chunks, when set, are written one at a time with a flush after
	// each, separated by ChunkDelay. Used to exercise streaming reads.
	Chunks     [][]byte
	ChunkDelay time.Duration
}

// RecordedRequest is one request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewServer starts a mock provider.
func NewServer() *Server {
	s := &Server{
		responses: make(map[string]Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse registers the answer for a path.
func (s *Server) SetResponse(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// RequestCount returns how many requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of all recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	if len(resp.Chunks) > 0 {
		s.writeChunks(w, resp)
		return
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	switch v := resp.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) writeChunks(w http.ResponseWriter, resp Response) {
	flusher, _ := w.(http.Flusher)
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	for i, chunk := range resp.Chunks {
		if i > 0 && resp.ChunkDelay > 0 {
			time.Sleep(resp.ChunkDelay)
		}
		if _, err := w.Write(chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
