package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// Benchmark_CheckLiveness benchmarks the liveness check.
func Benchmark_CheckLiveness(b *testing.B) {
	checker := New(5 * time.Second)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = checker.CheckLiveness(ctx)
	}
}

// Benchmark_CheckReadiness_NoChecks benchmarks readiness with no checks.
func Benchmark_CheckReadiness_NoChecks(b *testing.B) {
	checker := New(5 * time.Second)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = checker.CheckReadiness(ctx)
	}
}

// Benchmark_CheckReadiness_ThreeChecks benchmarks readiness with the
// gateway's usual component set.
func Benchmark_CheckReadiness_ThreeChecks(b *testing.B) {
	checker := New(5 * time.Second)
	checker.RegisterCheck("upstream", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("proxy_pool", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("journal", func(ctx context.Context) error { return ErrDisabled })
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = checker.CheckReadiness(ctx)
	}
}

// Benchmark_CheckReadiness_FailingCheck benchmarks readiness with a failing check.
func Benchmark_CheckReadiness_FailingCheck(b *testing.B) {
	checker := New(5 * time.Second)
	checker.RegisterCheck("upstream", func(ctx context.Context) error {
		return errors.New("player request failed")
	})
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = checker.CheckReadiness(ctx)
	}
}

// Benchmark_LivenessHandler benchmarks the liveness HTTP handler.
func Benchmark_LivenessHandler(b *testing.B) {
	checker := New(5 * time.Second)
	handler := checker.LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
	}
}

// Benchmark_ReadinessHandler benchmarks the readiness HTTP handler.
func Benchmark_ReadinessHandler(b *testing.B) {
	checker := New(5 * time.Second)
	checker.RegisterCheck("upstream", func(ctx context.Context) error { return nil })
	handler := checker.ReadinessHandler()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
	}
}

// Benchmark_VersionHandler benchmarks the version HTTP handler.
func Benchmark_VersionHandler(b *testing.B) {
	handler := VersionHandler("1.2.0", "abc123", "2026-08-01")
	req := httptest.NewRequest(http.MethodGet, "/version", nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
	}
}

// Benchmark_Parallel_LivenessHandler benchmarks concurrent liveness requests.
func Benchmark_Parallel_LivenessHandler(b *testing.B) {
	checker := New(5 * time.Second)
	handler := checker.LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec := httptest.NewRecorder()
			handler(rec, req)
		}
	})
}
