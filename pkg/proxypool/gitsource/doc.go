// Package gitsource loads the proxy pool from a Git repository.
//
// The repository is cloned (or opened, when already present) once at
// startup, the configured branch is checked out, and the pool file is
// read from the work tree. The loaded pool is immutable for the life of
// the process: commits pushed after startup are only reported, never
// applied.
//
// # Basic Usage
//
//	repo, err := gitsource.NewRepository(&cfg.Proxy.Git)
//	if err != nil {
//		return err
//	}
//
//	if err := repo.Clone(ctx); err != nil {
//		return err
//	}
//
//	endpoints, err := repo.LoadPool()
//	if err != nil {
//		return err
//	}
//
// # Drift Detection
//
// The watcher periodically pulls and warns when the remote pool file no
// longer matches the one loaded at startup:
//
//	watcher := gitsource.NewWatcher(repo, cfg.Proxy.Git.Poll.Interval, logger)
//	watcher.Start(ctx)
//
// The warning names the commit range so the operator can review the
// change before restarting.
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - Basic: username and password
//   - None: public repositories
package gitsource
