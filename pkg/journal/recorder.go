package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the journal recorder.
type Config struct {
	// Enabled enables request journaling.
	Enabled bool

	// Buffer is the size of the async write channel buffer.
	// Default: 1024
	Buffer int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		Buffer:       1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder journals served gateway requests. Records are enqueued
// without blocking and written to storage by a background worker, so
// journaling never adds latency to request handling. When the buffer
// is full the record is dropped and counted instead.
type Recorder struct {
	storage Storage
	config  *Config
	records chan *Record
	wg      sync.WaitGroup
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger

	// dropped counts records lost at enqueue
	dropped atomic.Int64
}

// NewRecorder creates a recorder writing to the provided storage
// backend and starts its background worker. A nil logger falls back to
// slog.Default.
func NewRecorder(storage Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = 1024
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		records: make(chan *Record, config.Buffer),
		done:    make(chan struct{}),
		logger:  logger.With("component", "journal.recorder"),
	}

	// Background worker drains the channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder started",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a record for async writing and returns immediately.
// A zero ID or Time is filled in. When the buffer is full or the
// recorder is closed, the record is dropped, the drop counter moves,
// and the returned error matches ErrBufferFull or ErrClosed.
func (r *Recorder) Record(record *Record) error {
	if !r.config.Enabled {
		return nil
	}

	select {
	case <-r.done:
		r.dropped.Add(1)
		return NewRecorderError(record.ID, ErrClosed)
	default:
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Time.IsZero() {
		record.Time = time.Now()
	}

	select {
	case r.records <- record:
		return nil
	default:
		r.dropped.Add(1)
		r.logger.Warn("journal buffer full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"buffer", r.config.Buffer,
		)
		return NewRecorderError(record.ID, ErrBufferFull)
	}
}

// Recent returns the most recent records, newest first. A non-positive
// limit uses the default query limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*Record, error) {
	q := &Query{Limit: limit}
	if q.Limit <= 0 {
		q.Limit = DefaultQueryLimit
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return r.storage.Query(ctx, q)
}

// CountSince returns the number of records completed at or after t.
func (r *Recorder) CountSince(ctx context.Context, t time.Time) (int64, error) {
	return r.storage.Count(ctx, &Query{Start: &t})
}

// Dropped returns the number of records lost at enqueue since start.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close drains the write buffer and stops the worker. Each remaining
// write is bounded by the configured write timeout. Close is idempotent.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()

		r.logger.Info("journal recorder stopped",
			"dropped", r.dropped.Load(),
		)
	})
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			pending := len(r.records)
			if pending > 0 {
				r.logger.Info("draining journal buffer before shutdown",
					"pending", pending,
				)
			}

			for {
				select {
				case record := <-r.records:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	elapsed := time.Since(start)

	r.logger.Debug("journal record written",
		"record_id", record.ID,
		"route", record.Route,
		"status", record.Status,
		"duration_ms", elapsed.Milliseconds(),
	)

	if elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", record.ID,
			"duration_ms", elapsed.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
