package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"wavecast-hq/tunegate/pkg/cli"
)

var benchmarkFlags struct {
	target      string
	paths       string
	duration    time.Duration
	rate        int
	concurrency int
	format      string
	output      string
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Load test a running gateway",
	Long: `Send a steady stream of GET requests to a running gateway and
measure how it holds up.

Metrics Collected:
  - Request throughput (requests/sec)
  - Latency percentiles (p50, p95, p99, max)
  - Status code distribution
  - Transport failure count

Point it at cheap routes; streaming routes relay real media bytes and
will measure your bandwidth rather than the gateway.

Examples:
  # Hammer the root route
  tunegate benchmark --target http://localhost:3000

  # Exercise the rate limiter
  tunegate benchmark --rate 200 --duration 10s

  # Spread load over several routes
  tunegate benchmark --paths "/,/api/search?q=test,/api/trending"`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVar(&benchmarkFlags.target, "target", "http://localhost:3000", "gateway URL")
	benchmarkCmd.Flags().StringVar(&benchmarkFlags.paths, "paths", "/", "comma-separated request paths")
	benchmarkCmd.Flags().DurationVar(&benchmarkFlags.duration, "duration", 30*time.Second, "test duration")
	benchmarkCmd.Flags().IntVar(&benchmarkFlags.rate, "rate", 10, "requests per second")
	benchmarkCmd.Flags().IntVar(&benchmarkFlags.concurrency, "concurrency", 4, "concurrent clients")
	benchmarkCmd.Flags().StringVar(&benchmarkFlags.format, "format", "text", "output format: text, json")
	benchmarkCmd.Flags().StringVarP(&benchmarkFlags.output, "output", "o", "", "output file (default: stdout)")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	if benchmarkFlags.rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", benchmarkFlags.rate)
	}
	if benchmarkFlags.concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", benchmarkFlags.concurrency)
	}

	targets, err := benchmarkTargets(benchmarkFlags.target, benchmarkFlags.paths)
	if err != nil {
		return err
	}

	fmt.Println("Tunegate Benchmark")
	fmt.Println("==================")
	fmt.Printf("Target: %s\n", benchmarkFlags.target)
	fmt.Printf("Paths: %s\n", benchmarkFlags.paths)
	fmt.Printf("Duration: %s\n", benchmarkFlags.duration)
	fmt.Printf("Rate: %d req/s\n", benchmarkFlags.rate)
	fmt.Printf("Concurrency: %d\n", benchmarkFlags.concurrency)
	fmt.Println()
	fmt.Println("Running...")
	fmt.Println()

	// Ctrl+C aborts the run and reports what was collected so far
	ctx := cli.SetupSignalHandler()

	results := runLoadTest(ctx, targets, benchmarkFlags.duration, benchmarkFlags.rate, benchmarkFlags.concurrency)

	output := os.Stdout
	if benchmarkFlags.output != "" {
		output, err = os.Create(benchmarkFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if benchmarkFlags.format == "json" {
		return writeBenchmarkJSON(output, results)
	}
	displayResults(output, results)
	return nil
}

// benchmarkTargets expands the comma-separated path list into full URLs
// against the target base.
func benchmarkTargets(target, paths string) ([]string, error) {
	base, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("target must be an http or https URL, got %q", target)
	}

	var targets []string
	for _, path := range strings.Split(paths, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		ref, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}
		targets = append(targets, base.ResolveReference(ref).String())
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no request paths given")
	}
	return targets, nil
}

type benchmarkResults struct {
	sent         int
	completed    int
	failed       int
	duration     time.Duration
	latencies    []time.Duration
	statusCounts map[int]int
}

// runLoadTest feeds requests to a worker pool at the configured rate.
// The duration bounds sending; in-flight requests are allowed to finish
// so the tail of the run is not counted as failures.
func runLoadTest(ctx context.Context, targets []string, duration time.Duration, rate, concurrency int) *benchmarkResults {
	totalRequests := int(duration.Seconds()) * rate
	if totalRequests < 1 {
		totalRequests = 1
	}

	results := &benchmarkResults{
		statusCounts: make(map[int]int),
		latencies:    make([]time.Duration, 0, totalRequests),
	}

	client := &http.Client{Timeout: 30 * time.Second}

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(totalRequests))

	jobs := make(chan string)
	var (
		mu   sync.Mutex
		done int64
		wg   sync.WaitGroup
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				status, latency, err := sendBenchmarkRequest(ctx, client, target)

				mu.Lock()
				if err != nil {
					results.failed++
				} else {
					results.completed++
					results.statusCounts[status]++
					results.latencies = append(results.latencies, latency)
				}
				done++
				progress.Update(done)
				mu.Unlock()
			}
		}()
	}

	start := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	sent := 0
feed:
	for sent < totalRequests {
		select {
		case <-sendCtx.Done():
			break feed
		case <-ticker.C:
			select {
			case jobs <- targets[sent%len(targets)]:
				sent++
			case <-sendCtx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()
	progress.Finish()

	results.sent = sent
	results.duration = time.Since(start)
	return results
}

func sendBenchmarkRequest(ctx context.Context, client *http.Client, target string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, time.Since(start), err
	}

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return resp.StatusCode, time.Since(start), nil
}

func displayResults(output *os.File, results *benchmarkResults) {
	fmt.Fprintln(output, "Results:")
	fmt.Fprintln(output, "--------")
	fmt.Fprintf(output, "Requests:        %d sent, %d completed, %d failed\n",
		results.sent, results.completed, results.failed)
	fmt.Fprintf(output, "Duration:        %.1fs\n", results.duration.Seconds())

	if results.completed > 0 && results.duration > 0 {
		throughput := float64(results.completed) / results.duration.Seconds()
		fmt.Fprintf(output, "Throughput:      %.2f req/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)

		fmt.Fprintln(output)
		fmt.Fprintln(output, "Latency:")
		fmt.Fprintf(output, "  Min:     %.1fms\n", float64(min.Microseconds())/1000)
		fmt.Fprintf(output, "  Mean:    %.1fms\n", float64(mean.Microseconds())/1000)
		fmt.Fprintf(output, "  Median:  %.1fms\n", float64(median.Microseconds())/1000)
		fmt.Fprintf(output, "  p95:     %.1fms\n", float64(p95.Microseconds())/1000)
		fmt.Fprintf(output, "  p99:     %.1fms\n", float64(p99.Microseconds())/1000)
		fmt.Fprintf(output, "  Max:     %.1fms\n", float64(max.Microseconds())/1000)
	}

	if results.completed > 0 {
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Status Codes:")
		codes := make([]int, 0, len(results.statusCounts))
		for code := range results.statusCounts {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			count := results.statusCounts[code]
			pct := float64(count) / float64(results.completed) * 100
			fmt.Fprintf(output, "  %d:     %d (%.0f%%)\n", code, count, pct)
		}
	}
}

// benchmarkReport is the JSON shape emitted by --format json.
type benchmarkReport struct {
	Target          string          `json:"target"`
	DurationSeconds float64         `json:"duration_seconds"`
	Sent            int             `json:"requests_sent"`
	Completed       int             `json:"requests_completed"`
	Failed          int             `json:"requests_failed"`
	ThroughputRPS   float64         `json:"throughput_rps"`
	StatusCodes     map[int]int     `json:"status_codes"`
	LatencyMS       *latencySummary `json:"latency_ms,omitempty"`
}

type latencySummary struct {
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

func writeBenchmarkJSON(output *os.File, results *benchmarkResults) error {
	report := benchmarkReport{
		Target:          benchmarkFlags.target,
		DurationSeconds: results.duration.Seconds(),
		Sent:            results.sent,
		Completed:       results.completed,
		Failed:          results.failed,
		StatusCodes:     results.statusCounts,
	}
	if results.completed > 0 && results.duration > 0 {
		report.ThroughputRPS = float64(results.completed) / results.duration.Seconds()
	}
	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)
		report.LatencyMS = &latencySummary{
			Min:    float64(min.Microseconds()) / 1000,
			Mean:   float64(mean.Microseconds()) / 1000,
			Median: float64(median.Microseconds()) / 1000,
			P95:    float64(p95.Microseconds()) / 1000,
			P99:    float64(p99.Microseconds()) / 1000,
			Max:    float64(max.Microseconds()) / 1000,
		}
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(output, report)
}

func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = percentile(sorted, 50)
	p95 = percentile(sorted, 95)
	p99 = percentile(sorted, 99)

	return
}

// percentile returns the pth percentile of an ascending-sorted slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
