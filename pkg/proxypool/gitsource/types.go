package gitsource

import (
	"time"
)

// CommitInfo contains metadata about a Git commit.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// PullResult contains the result of a pull operation.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// RepositoryMetrics tracks Git operation metrics.
type RepositoryMetrics struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastCommitSHA   string
	LastPullTime    time.Time
	FailedPulls     int64
	SuccessfulPulls int64
}

// WatcherMetrics tracks drift watcher metrics.
type WatcherMetrics struct {
	PollCount     int64
	DriftCount    int64
	FailedPolls   int64
	LastPollTime  time.Time
	LastDriftTime time.Time
}
