package gitsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/proxypool"
)

// Repository manages Git operations for the proxy pool repository.
// The repository is cloned or opened once at startup and the pool file is
// read from the work tree. After that the pool is never reloaded; Pull is
// only used by the drift watcher to detect remote changes.
type Repository struct {
	config    *config.GitSourceConfig
	localPath string
	auth      AuthProvider
	repo      *gogit.Repository
	mu        sync.RWMutex
	metrics   *RepositoryMetrics
}

// NewRepository creates a new Git repository manager for the pool source.
// The config parameter must be non-nil and contain valid Git configuration.
// Returns an error if authentication provider creation fails.
func NewRepository(cfg *config.GitSourceConfig) (*Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}

	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		// Default to temp directory if not specified
		localPath = filepath.Join(os.TempDir(), "tunegate-proxy-pool")
	}

	return &Repository{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
		metrics:   &RepositoryMetrics{},
	}, nil
}

// Clone initializes the repository by cloning it locally.
// If the repository already exists locally, it opens the existing repo
// instead. Returns an error if cloning fails.
func (r *Repository) Clone(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		r.metrics.CloneDuration = time.Since(start)
	}()

	// Check if repo already exists
	gitDir := filepath.Join(r.localPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		r.repo = repo
		return nil
	}

	// Create parent directory
	if err := os.MkdirAll(r.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	cloneOpts := &gogit.CloneOptions{
		URL:           r.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  r.config.Depth > 0, // Only single branch for shallow clones
		Depth:         r.config.Depth,
	}

	auth, err := r.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}
	cloneOpts.Auth = auth

	// Clone repository with timeout
	cloneCtx, cancel := context.WithTimeout(ctx, r.config.Poll.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, r.localPath, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	r.repo = repo
	return nil
}

// Pull fetches latest changes from the remote repository.
// It returns a PullResult indicating whether changes were found and what
// files changed. This method is thread-safe and can be called concurrently.
// Returns an error if the pull operation fails.
func (r *Repository) Pull(ctx context.Context) (*PullResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		r.metrics.PullDuration = time.Since(start)
		r.metrics.LastPullTime = time.Now()
	}()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	// Get current HEAD before pull
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOpts := &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false,
	}

	auth, err := r.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}
	pullOpts.Auth = auth

	pullCtx, cancel := context.WithTimeout(ctx, r.config.Poll.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, pullOpts)
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		r.metrics.FailedPulls++
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	r.metrics.SuccessfulPulls++

	newRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}

	if result.HadChanges {
		changedFiles, err := r.changedFilesLocked(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = changedFiles
		r.metrics.LastCommitSHA = toSHA
	}

	return result, nil
}

// GetCurrentCommit returns metadata about the current HEAD commit.
// This method is thread-safe and can be called concurrently.
// Returns an error if the repository is not initialized or HEAD cannot be read.
func (r *Repository) GetCurrentCommit() (*CommitInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    commit.Message,
		Branch:     r.config.Branch,
		Repository: r.config.Repository,
	}, nil
}

// LoadPool reads and parses the pool file from the work tree.
// Clone must have succeeded first.
func (r *Repository) LoadPool() ([]proxypool.Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	return proxypool.LoadEndpointsFile(r.poolFilePathLocked())
}

// PoolFilePath returns the full path to the pool file within the work tree.
func (r *Repository) PoolFilePath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.poolFilePathLocked()
}

func (r *Repository) poolFilePathLocked() string {
	return filepath.Join(r.localPath, r.config.Path)
}

// GetLocalPath returns the local filesystem path where the repository is cloned.
func (r *Repository) GetLocalPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.localPath
}

// GetMetrics returns current repository metrics.
// This method is thread-safe and returns a copy of the metrics.
func (r *Repository) GetMetrics() RepositoryMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return *r.metrics
}

// changedFilesLocked diffs two commits and returns the changed file paths
// relative to the repository root. Callers must hold the lock.
func (r *Repository) changedFilesLocked(fromSHA, toSHA string) ([]string, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("repository not initialized")
	}

	fromHash := plumbing.NewHash(fromSHA)
	fromCommit, err := r.repo.CommitObject(fromHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}

	toHash := plumbing.NewHash(toSHA)
	toCommit, err := r.repo.CommitObject(toHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}

	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		// Prefer the post-change path; deletions only have the old one.
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
	}

	return files, nil
}
