package gitsource

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"wavecast-hq/tunegate/pkg/config"
)

// AuthProvider handles Git authentication for the pool repository.
type AuthProvider interface {
	// GetAuth returns git transport authentication method.
	GetAuth() (transport.AuthMethod, error)

	// Type returns auth type for logging purposes.
	Type() string
}

// TokenAuth implements token-based HTTPS authentication.
// Supports GitHub Personal Access Tokens, GitLab tokens, and Bitbucket tokens.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a new token-based authentication provider.
// The token parameter should be a valid personal access token or OAuth token
// with repository read permissions.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// GetAuth returns HTTP basic auth with the token as password.
// The username can be anything for token authentication.
func (a *TokenAuth) GetAuth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	return &http.BasicAuth{
		Username: "git", // Can be anything for token auth
		Password: a.token,
	}, nil
}

// Type returns the authentication type.
func (a *TokenAuth) Type() string {
	return "token"
}

// BasicAuth implements username and password HTTPS authentication.
type BasicAuth struct {
	username string
	password string
}

// NewBasicAuth creates a new basic authentication provider.
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		username: username,
		password: password,
	}
}

// GetAuth returns HTTP basic auth with the configured credentials.
func (a *BasicAuth) GetAuth() (transport.AuthMethod, error) {
	if a.username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	return &http.BasicAuth{
		Username: a.username,
		Password: a.password,
	}, nil
}

// Type returns the authentication type.
func (a *BasicAuth) Type() string {
	return "basic"
}

// NoAuth implements authentication for public repositories.
// This provider returns nil authentication, allowing access to public repositories.
type NoAuth struct{}

// NewNoAuth creates a new no-authentication provider for public repositories.
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// GetAuth returns nil authentication for public repositories.
func (a *NoAuth) GetAuth() (transport.AuthMethod, error) {
	return nil, nil
}

// Type returns the authentication type.
func (a *NoAuth) Type() string {
	return "none"
}

// NewAuthProvider creates an appropriate auth provider from configuration.
// Supported types: "token", "basic", "none".
// Returns an error if the type is unknown or required fields are missing.
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config cannot be nil")
	}

	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return NewTokenAuth(cfg.Token), nil

	case "basic":
		if cfg.Username == "" {
			return nil, fmt.Errorf("basic auth requires username")
		}
		return NewBasicAuth(cfg.Username, cfg.Password), nil

	case "none", "":
		return NewNoAuth(), nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
