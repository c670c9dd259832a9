package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wavecast-hq/tunegate/pkg/upstream"
)

func searchFixtures(n int) []upstream.SearchResult {
	ids := []string{"aaaaaaaaaa1", "bbbbbbbbbb2", "cccccccccc3", "dddddddddd4", "eeeeeeeeee5"}
	results := make([]upstream.SearchResult, 0, n)
	for i := 0; i < n && i < len(ids); i++ {
		results = append(results, upstream.SearchResult{
			ID:       ids[i],
			Title:    "Track " + ids[i],
			Author:   "Artist",
			Duration: "3:45",
			URL:      "https://tube.example/watch?v=" + ids[i],
			Views:    "1M views",
		})
	}
	return results
}

func TestSearchHandler(t *testing.T) {
	t.Run("missing q is rejected without an upstream call", func(t *testing.T) {
		client := &fakeClient{}
		handler := NewSearchHandler(newDeps(client))

		req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusBadRequest)
		}
		if client.searchCalls != 0 {
			t.Errorf("Search calls = %v, want 0", client.searchCalls)
		}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response body: %v", err)
		}
		if body.Error != "invalid_request" {
			t.Errorf("Error kind = %q, want invalid_request", body.Error)
		}
	})

	t.Run("blank q is rejected", func(t *testing.T) {
		client := &fakeClient{}
		handler := NewSearchHandler(newDeps(client))

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=%20%20", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusBadRequest)
		}
		if client.searchCalls != 0 {
			t.Errorf("Search calls = %v, want 0", client.searchCalls)
		}
	})

	t.Run("returns results in provider order", func(t *testing.T) {
		client := &fakeClient{searchResults: searchFixtures(5)}
		handler := NewSearchHandler(newDeps(client))

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=test+track&limit=2", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status code = %v, want %v. Body: %s", w.Code, http.StatusOK, w.Body.String())
		}
		if client.lastQuery != "test track" {
			t.Errorf("query = %q, want %q", client.lastQuery, "test track")
		}
		if client.lastLimit != 2 {
			t.Errorf("limit = %v, want 2", client.lastLimit)
		}

		var resp struct {
			Success bool                    `json:"success"`
			Results []upstream.SearchResult `json:"results"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response body: %v", err)
		}
		if !resp.Success {
			t.Error("Success = false, want true")
		}
		if len(resp.Results) != 2 {
			t.Fatalf("Results length = %v, want 2", len(resp.Results))
		}
		if resp.Results[0].ID != "aaaaaaaaaa1" || resp.Results[1].ID != "bbbbbbbbbb2" {
			t.Errorf("result order = [%s %s], want provider order", resp.Results[0].ID, resp.Results[1].ID)
		}
	})

	t.Run("limit defaults and clamps", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
			want  int
		}{
			{"absent", "q=x", DefaultSearchLimit},
			{"malformed", "q=x&limit=lots", DefaultSearchLimit},
			{"above cap", "q=x&limit=999", MaxSearchLimit},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := &fakeClient{searchResults: searchFixtures(3)}
				handler := NewSearchHandler(newDeps(client))

				req := httptest.NewRequest(http.MethodGet, "/api/search?"+tt.query, nil)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if client.lastLimit != tt.want {
					t.Errorf("limit = %v, want %v", client.lastLimit, tt.want)
				}
			})
		}
	})

	t.Run("upstream failure maps to 500 with the provider wording", func(t *testing.T) {
		client := &fakeClient{searchErr: &upstream.UpstreamError{
			Operation:  "search",
			StatusCode: 503,
			Message:    "backend unavailable",
		}}
		handler := NewSearchHandler(newDeps(client))

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
		}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response body: %v", err)
		}
		if body.Error != "upstream_error" {
			t.Errorf("Error kind = %q, want upstream_error", body.Error)
		}
	})

	t.Run("POST is rejected", func(t *testing.T) {
		client := &fakeClient{}
		handler := NewSearchHandler(newDeps(client))

		req := httptest.NewRequest(http.MethodPost, "/api/search?q=test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusMethodNotAllowed)
		}
		if client.searchCalls != 0 {
			t.Errorf("Search calls = %v, want 0", client.searchCalls)
		}
	})
}
