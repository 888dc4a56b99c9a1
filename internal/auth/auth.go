// Package auth resolves and validates the control bus's authentication
// token: a single shared secret loaded from the environment, an
// existing token file, or freshly generated and persisted.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const tokenLength = 64

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// envTokenVar overrides token resolution entirely when set, for testing
// and custom deployments.
const envTokenVar = "TITI_TOKEN"

// TokenAuth holds the resolved token and the path it was loaded from or
// written to (empty when sourced from the environment).
type TokenAuth struct {
	token     string
	tokenPath string
}

// New resolves a token in priority order: TITI_TOKEN env var, an
// existing file at tokenPath, or else a freshly generated token
// persisted to tokenPath with 0600 permissions on Unix.
func New(tokenPath string) (*TokenAuth, error) {
	if env := os.Getenv(envTokenVar); env != "" {
		return &TokenAuth{token: env}, nil
	}

	if data, err := os.ReadFile(tokenPath); err == nil {
		return &TokenAuth{token: string(data), tokenPath: tokenPath}, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("auth: reading token file: %w", err)
	}

	return generateAndPersist(tokenPath)
}

// generateAndPersist creates a fresh token and writes it to tokenPath,
// holding a file lock for the duration so two processes starting
// concurrently against the same path can't generate and write two
// different tokens in an interleaved, torn-write race.
func generateAndPersist(tokenPath string) (*TokenAuth, error) {
	if dir := filepath.Dir(tokenPath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("auth: creating token dir: %w", err)
		}
	}

	lock := flock.New(tokenPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("auth: locking token file: %w", err)
	}
	defer lock.Unlock()

	// Another process may have generated the file while we waited for
	// the lock.
	if data, err := os.ReadFile(tokenPath); err == nil {
		return &TokenAuth{token: string(data), tokenPath: tokenPath}, nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("auth: generating token: %w", err)
	}
	if err := os.WriteFile(tokenPath, []byte(token), 0600); err != nil {
		return nil, fmt.Errorf("auth: writing token file: %w", err)
	}
	return &TokenAuth{token: token, tokenPath: tokenPath}, nil
}

// DefaultTokenPath returns ~/.titi/token, the default token location.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("auth: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".titi", "token"), nil
}

// FromToken builds a TokenAuth around an explicit token, bypassing file
// resolution entirely. Used by tests and by the CLI's --token flag on
// the client side.
func FromToken(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// Token returns the resolved token value.
func (a *TokenAuth) Token() string { return a.token }

// TokenPath returns the path the token was loaded from or written to;
// empty when the token came from the environment.
func (a *TokenAuth) TokenPath() string { return a.tokenPath }

// Validate reports whether candidate matches the stored token, in
// constant time with respect to candidate's content (timing
// side-channel hardening per spec's recommendation).
func (a *TokenAuth) Validate(candidate string) bool {
	if len(candidate) != len(a.token) {
		// Still run a constant-time compare against a same-length
		// dummy so a length mismatch doesn't short-circuit timing.
		subtle.ConstantTimeCompare([]byte(a.token), []byte(a.token))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.token)) == 1
}

func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, tokenLength)
	for i, b := range buf {
		out[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(out), nil
}
