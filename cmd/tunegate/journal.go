package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wavecast-hq/tunegate/pkg/cli"
	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/journal"
	"wavecast-hq/tunegate/pkg/journal/storage"
)

var journalFlags struct {
	backend   string
	timeRange string
	route     string
	client    string
	status    int
	errored   string
	limit     int
	offset    int
	format    string
	output    string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the request journal",
	Long: `Query and summarize the journal of served gateway requests.

Every request the gateway serves is journaled with its route, client,
status, bytes relayed, and duration. The journal command reads that
journal for traffic inspection and reporting.

The memory backend is per-process, so querying it from the CLI only
sees an empty journal; these commands are meant for the sqlite backend.

Subcommands:
  query   - Query journal records with filters
  report  - Summarize journal activity

Examples:
  # Query the last day
  tunegate journal query --time-range "2026-08-22T00:00:00Z/2026-08-23T00:00:00Z"

  # All failed stream requests from one client
  tunegate journal query --route /api/stream --client 203.0.113.9 --errored true

  # Export to a JSON file
  tunegate journal query --format json --output journal.json`,
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query journal records",
	Long: `Query journal records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-22T00:00:00Z/2026-08-23T00:00:00Z"

Examples:
  # Query a specific time range
  tunegate journal query --time-range "2026-08-22T00:00:00Z/2026-08-23T00:00:00Z"

  # Filter by route and status
  tunegate journal query --route /api/download --status 429

  # Only errored requests
  tunegate journal query --errored true

  # Export to CSV
  tunegate journal query --format csv --output journal.csv`,
	RunE: queryJournal,
}

var journalReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize journal activity",
	Long: `Summarize journal activity by route, status, and outcome.

Examples:
  # Report over everything retained
  tunegate journal report

  # Report over one day
  tunegate journal report --time-range "2026-08-22T00:00:00Z/2026-08-23T00:00:00Z"`,
	RunE: reportJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalQueryCmd, journalReportCmd)

	// Flags for query command
	journalQueryCmd.Flags().StringVar(&journalFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	journalQueryCmd.Flags().StringVar(&journalFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	journalQueryCmd.Flags().StringVar(&journalFlags.route, "route", "", "filter by route pattern")
	journalQueryCmd.Flags().StringVar(&journalFlags.client, "client", "", "filter by client identity")
	journalQueryCmd.Flags().IntVar(&journalFlags.status, "status", 0, "filter by HTTP status code")
	journalQueryCmd.Flags().StringVar(&journalFlags.errored, "errored", "", "filter by outcome: true, false")
	journalQueryCmd.Flags().IntVar(&journalFlags.limit, "limit", journal.DefaultQueryLimit, "max results")
	journalQueryCmd.Flags().IntVar(&journalFlags.offset, "offset", 0, "pagination offset")
	journalQueryCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json, csv")
	journalQueryCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for report command
	journalReportCmd.Flags().StringVar(&journalFlags.backend, "backend", "", "backend: sqlite, memory")
	journalReportCmd.Flags().StringVar(&journalFlags.timeRange, "time-range", "", "time range (RFC3339 interval)")
	journalReportCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "", "output file")
}

// openJournalStorage opens the journal backend named by the flag, or the
// configured one when the flag is empty.
func openJournalStorage(cfg *config.Config, backendFlag string) (journal.Storage, error) {
	backend := backendFlag
	if backend == "" {
		backend = cfg.Journal.Backend
	}

	switch backend {
	case "sqlite":
		sqliteConfig := &storage.SQLiteConfig{
			Path:               cfg.Journal.SQLite.Path,
			BusyTimeout:        cfg.Journal.SQLite.BusyTimeout,
			CheckpointInterval: cfg.Journal.SQLite.CheckpointInterval,
		}
		store, err := storage.NewSQLiteStorage(sqliteConfig, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite journal storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(cfg.Journal.Memory.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backend)
	}
}

// parseTimeRange parses an RFC3339 "start/end" interval.
func parseTimeRange(raw string) (time.Time, time.Time, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}

	return start, end, nil
}

func queryJournal(cmd *cobra.Command, args []string) error {
	// Load config to get backend settings
	if err := config.Initialize(resolveConfigPath()); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openJournalStorage(cfg, journalFlags.backend)
	if err != nil {
		return cli.NewCommandError("journal", err)
	}
	defer store.Close()

	// Build query
	query := &journal.Query{
		Route:    journalFlags.route,
		ClientID: journalFlags.client,
		Status:   journalFlags.status,
		Limit:    journalFlags.limit,
		Offset:   journalFlags.offset,
	}

	if journalFlags.timeRange != "" {
		start, end, err := parseTimeRange(journalFlags.timeRange)
		if err != nil {
			return err
		}
		query.Start = &start
		query.End = &end
	}

	switch journalFlags.errored {
	case "":
	case "true":
		errored := true
		query.Errored = &errored
	case "false":
		errored := false
		query.Errored = &errored
	default:
		return fmt.Errorf("invalid --errored value %q (expected: true, false)", journalFlags.errored)
	}

	if err := query.Validate(); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	// Execute query
	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	// Output results
	output := os.Stdout
	if journalFlags.output != "" {
		output, err = os.Create(journalFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch journalFlags.format {
	case "json":
		return outputJournalJSON(output, records)
	case "csv":
		return outputJournalCSV(output, records)
	default:
		return outputJournalText(output, records, query)
	}
}

func outputJournalText(output *os.File, records []*journal.Record, query *journal.Query) error {
	if query.Start != nil && query.End != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.Start.Format(time.RFC3339),
			query.End.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Request ID: %s\n", record.RequestID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.Time.Format(time.RFC3339))
		fmt.Fprintf(output, "Route: %s %s\n", record.Method, record.Route)
		if record.ClientID != "" {
			fmt.Fprintf(output, "Client: %s\n", record.ClientID)
		}
		fmt.Fprintf(output, "Status: %d\n", record.Status)
		fmt.Fprintf(output, "Bytes out: %d\n", record.BytesOut)
		fmt.Fprintf(output, "Duration: %dms\n", record.DurationMS)
		if record.MediaID != "" {
			fmt.Fprintf(output, "Media ID: %s\n", record.MediaID)
		}
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputJournalJSON(output *os.File, records []*journal.Record) error {
	result := map[string]interface{}{
		"total_records": len(records),
		"records":       records,
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(output, result)
}

func outputJournalCSV(output *os.File, records []*journal.Record) error {
	writer := csv.NewWriter(output)
	defer writer.Flush()

	header := []string{"id", "request_id", "time", "route", "method", "client_id", "status", "bytes_out", "duration_ms", "media_id", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, record := range records {
		row := []string{
			record.ID,
			record.RequestID,
			record.Time.Format(time.RFC3339),
			record.Route,
			record.Method,
			record.ClientID,
			strconv.Itoa(record.Status),
			strconv.FormatInt(record.BytesOut, 10),
			strconv.FormatInt(record.DurationMS, 10),
			record.MediaID,
			record.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func reportJournal(cmd *cobra.Command, args []string) error {
	// Load config
	if err := config.Initialize(resolveConfigPath()); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openJournalStorage(cfg, journalFlags.backend)
	if err != nil {
		return cli.NewCommandError("journal", err)
	}
	defer store.Close()

	// The report reads as much as one query can return
	query := &journal.Query{Limit: journal.MaxQueryLimit}
	if journalFlags.timeRange != "" {
		start, end, err := parseTimeRange(journalFlags.timeRange)
		if err != nil {
			return err
		}
		query.Start = &start
		query.End = &end
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if journalFlags.output != "" {
		output, err = os.Create(journalFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	return writeJournalReport(output, records, query)
}

func writeJournalReport(output *os.File, records []*journal.Record, query *journal.Query) error {
	fmt.Fprintln(output, "Journal Report")
	fmt.Fprintln(output, "==============")

	if query.Start != nil && query.End != nil {
		fmt.Fprintf(output, "Time Range: %s to %s\n",
			query.Start.Format("2006-01-02"),
			query.End.Format("2006-01-02"))
	}
	fmt.Fprintf(output, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	// Summary stats
	var totalBytes int64
	var totalDuration int64
	errored := 0
	routeCounts := make(map[string]int)
	statusCounts := make(map[int]int)

	for _, record := range records {
		totalBytes += record.BytesOut
		totalDuration += record.DurationMS
		if record.Error != "" {
			errored++
		}
		routeCounts[record.Route]++
		statusCounts[record.Status]++
	}

	fmt.Fprintln(output, "Summary:")
	fmt.Fprintln(output, "--------")
	fmt.Fprintf(output, "Total Requests: %d\n", len(records))
	fmt.Fprintf(output, "Total Bytes Out: %d\n", totalBytes)
	fmt.Fprintf(output, "Mean Duration: %dms\n", totalDuration/int64(len(records)))
	pct := float64(errored) / float64(len(records)) * 100
	fmt.Fprintf(output, "Errored: %d (%.0f%%)\n", errored, pct)
	fmt.Fprintln(output)

	fmt.Fprintln(output, "By Route:")
	for route, count := range routeCounts {
		pct := float64(count) / float64(len(records)) * 100
		fmt.Fprintf(output, "  %s: %d requests (%.0f%%)\n", route, count, pct)
	}
	fmt.Fprintln(output)

	fmt.Fprintln(output, "By Status:")
	for status, count := range statusCounts {
		pct := float64(count) / float64(len(records)) * 100
		fmt.Fprintf(output, "  %d: %d requests (%.0f%%)\n", status, count, pct)
	}

	return nil
}
