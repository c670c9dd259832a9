package strategies

import (
	"errors"
	"strings"
	"testing"

	"wavecast-hq/tunegate/pkg/proxypool"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		strategyName string
		seed         int64
		wantName     string
		wantErr      bool
	}{
		{
			name:         "random",
			strategyName: "random",
			seed:         42,
			wantName:     "random",
		},
		{
			name:         "empty name defaults to random",
			strategyName: "",
			wantName:     "random",
		},
		{
			name:         "round robin",
			strategyName: "round_robin",
			wantName:     "round_robin",
		},
		{
			name:         "unknown",
			strategyName: "weighted",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := New(tt.strategyName, tt.seed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.strategyName, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if strategy.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", strategy.Name(), tt.wantName)
			}
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New("weighted", 0)
	if err == nil {
		t.Fatal("New() expected error for unknown strategy")
	}

	if !errors.Is(err, proxypool.ErrUnknownStrategy) {
		t.Errorf("error should match ErrUnknownStrategy, got: %v", err)
	}

	var unknownErr *proxypool.UnknownStrategyError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error should be *UnknownStrategyError, got %T", err)
	}
	if unknownErr.Strategy != "weighted" {
		t.Errorf("Strategy = %q, want weighted", unknownErr.Strategy)
	}
	if !strings.Contains(err.Error(), "available strategies") {
		t.Errorf("error should list available strategies, got: %v", err)
	}
}

func TestNew_SeedOnlyAffectsRandom(t *testing.T) {
	a, err := New("random", 7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := New("random", 7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	endpoints := testEndpoints(5)
	for i := 0; i < 20; i++ {
		epA, _ := a.Pick(endpoints)
		epB, _ := b.Pick(endpoints)
		if epA != epB {
			t.Fatalf("pick %d diverged for equal seeds: %s vs %s", i, epA.Host, epB.Host)
		}
	}
}
