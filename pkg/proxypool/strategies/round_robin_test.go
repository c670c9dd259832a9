package strategies

import (
	"errors"
	"sync"
	"testing"

	"wavecast-hq/tunegate/pkg/proxypool"
)

func TestNewRoundRobin(t *testing.T) {
	if NewRoundRobin() == nil {
		t.Fatal("NewRoundRobin() returned nil")
	}
}

func TestRoundRobin_Pick(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []proxypool.Endpoint
		wantErr   bool
	}{
		{
			name:      "single endpoint",
			endpoints: testEndpoints(1),
		},
		{
			name:      "multiple endpoints",
			endpoints: testEndpoints(3),
		},
		{
			name:      "no endpoints",
			endpoints: []proxypool.Endpoint{},
			wantErr:   true,
		},
		{
			name:      "nil endpoints",
			endpoints: nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewRoundRobin()

			ep, err := strategy.Pick(tt.endpoints)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Pick() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, proxypool.ErrEmptyPool) {
					t.Errorf("Pick() error = %v, want ErrEmptyPool", err)
				}
				return
			}
			if ep.Host == "" {
				t.Error("Pick() returned an empty endpoint without error")
			}
		})
	}
}

func TestRoundRobin_Order(t *testing.T) {
	endpoints := testEndpoints(3)
	strategy := NewRoundRobin()

	want := []string{
		"proxy0.example.net", "proxy1.example.net", "proxy2.example.net",
		"proxy0.example.net", "proxy1.example.net", "proxy2.example.net",
	}

	for i, wantHost := range want {
		ep, err := strategy.Pick(endpoints)
		if err != nil {
			t.Fatalf("Pick() error = %v", err)
		}
		if ep.Host != wantHost {
			t.Fatalf("pick %d = %s, want %s", i, ep.Host, wantHost)
		}
	}
}

func TestRoundRobin_EvenDistribution(t *testing.T) {
	endpoints := testEndpoints(3)
	strategy := NewRoundRobin()

	counts := make(map[string]int)
	iterations := 300

	for i := 0; i < iterations; i++ {
		ep, err := strategy.Pick(endpoints)
		if err != nil {
			t.Fatalf("Pick() error = %v", err)
		}
		counts[ep.Host]++
	}

	expected := iterations / len(endpoints)
	for _, ep := range endpoints {
		if counts[ep.Host] != expected {
			t.Errorf("endpoint %s got %d picks, expected %d", ep.Host, counts[ep.Host], expected)
		}
	}
}

func TestRoundRobin_ConcurrentPicks(t *testing.T) {
	endpoints := testEndpoints(3)
	strategy := NewRoundRobin()

	var mu sync.Mutex
	counts := make(map[string]int)

	var wg sync.WaitGroup
	for g := 0; g < 6; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ep, err := strategy.Pick(endpoints)
				if err != nil {
					t.Errorf("Pick() error = %v", err)
					return
				}
				mu.Lock()
				counts[ep.Host]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// The atomic counter hands out each index exactly once, so the
	// rotation stays exact even under concurrency.
	for _, ep := range endpoints {
		if counts[ep.Host] != 200 {
			t.Errorf("endpoint %s got %d picks, expected 200", ep.Host, counts[ep.Host])
		}
	}
}

func TestRoundRobin_Reset(t *testing.T) {
	endpoints := testEndpoints(3)
	strategy := NewRoundRobin()

	for i := 0; i < 4; i++ {
		if _, err := strategy.Pick(endpoints); err != nil {
			t.Fatalf("Pick() error = %v", err)
		}
	}

	strategy.Reset()

	ep, err := strategy.Pick(endpoints)
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if ep.Host != "proxy0.example.net" {
		t.Errorf("Pick() after Reset() = %s, want the first endpoint", ep.Host)
	}
}

func TestRoundRobin_Name(t *testing.T) {
	if got := NewRoundRobin().Name(); got != "round_robin" {
		t.Errorf("Name() = %q, want round_robin", got)
	}
}
