package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"wavecast-hq/tunegate/internal/upstreamtest"
)

func TestSeedPicker_Deterministic(t *testing.T) {
	queries := []string{"alpha", "beta", "gamma", "delta"}
	a := newSeedPicker(queries, 42)
	b := newSeedPicker(queries, 42)

	for i := 0; i < 50; i++ {
		pa, pb := a.pick(), b.pick()
		if pa != pb {
			t.Fatalf("pick %d diverged: %q vs %q", i, pa, pb)
		}
	}
}

func TestSeedPicker_SingleQuery(t *testing.T) {
	p := newSeedPicker([]string{"only"}, 0)
	for i := 0; i < 5; i++ {
		if got := p.pick(); got != "only" {
			t.Fatalf("expected the single query, got %q", got)
		}
	}
}

func TestSeedPicker_Empty(t *testing.T) {
	p := newSeedPicker(nil, 0)
	if got := p.pick(); got != "" {
		t.Errorf("expected empty pick, got %q", got)
	}
}

func TestTrending(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	mock.SetResponse(searchPath, upstreamtest.Response{
		Body: upstreamtest.SearchResponse(
			upstreamtest.SearchItem("aaaaaaaaaa1", "Hot Track", "Artist", "3:05", "10M views"),
		),
	})

	client, err := NewClient(Config{
		BaseURL:         mock.URL(),
		TrendingQueries: []string{"seed one", "seed two"},
		TrendingSeed:    7,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	results, err := client.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Hot Track" {
		t.Fatalf("unexpected results: %+v", results)
	}

	req, _ := mock.LastRequest()
	var payload searchRequest
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("failed to decode recorded payload: %v", err)
	}
	if payload.Query != "seed one" && payload.Query != "seed two" {
		t.Errorf("expected a configured seed query, got %q", payload.Query)
	}
}

func TestTrending_SameSeedSameRotation(t *testing.T) {
	mock := upstreamtest.NewServer()
	defer mock.Close()
	mock.SetResponse(searchPath, upstreamtest.Response{
		Body: upstreamtest.SearchResponse(),
	})

	newSeeded := func() *Client {
		client, err := NewClient(Config{
			BaseURL:         mock.URL(),
			TrendingQueries: []string{"alpha", "beta", "gamma"},
			TrendingSeed:    99,
			Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		return client
	}

	queriesFor := func(c *Client) []string {
		out := make([]string, 10)
		for i := range out {
			out[i] = c.seeds.pick()
		}
		return out
	}

	a, b := queriesFor(newSeeded()), queriesFor(newSeeded())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rotation %d diverged: %q vs %q", i, a[i], b[i])
		}
	}
}
