// Package session holds the authenticated state of a console: the bearer
// credential and the principal it identifies. The credential is persisted to
// a single token file so a session survives process restarts; everything else
// is in-memory only.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// TokenFileName is the name of the durable credential file inside a console's
// state directory.
const TokenFileName = "token"

// Store is the session state of one console instance. The zero credential
// means unauthenticated. Authenticated state is derived from the credential
// alone; the principal may be absent while authenticated because it is
// fetched lazily from the profile endpoint.
type Store struct {
	mu        sync.Mutex
	path      string
	token     string
	principal any
}

// NewStore creates a store persisting its credential at
// <stateDir>/token and hydrates it from an existing file if one is present.
// A missing file means a fresh unauthenticated session, not an error.
func NewStore(stateDir string) (*Store, error) {
	if stateDir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	s := &Store{path: filepath.Join(stateDir, TokenFileName)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("unable to read token file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Authenticated reports whether a credential is held. Pure read, no I/O.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token returns the held credential, or the empty string when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Principal returns the cached principal, or nil when it has not been
// fetched yet.
func (s *Store) Principal() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// SetCredential stores the credential and principal of a fresh login and
// persists the credential. The on-disk write is atomic: concurrent readers
// observe either the previous credential or the new one, never a partial
// write.
func (s *Store) SetCredential(token string, principal any) error {
	if token == "" {
		return fmt.Errorf("credential cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeTokenFile(s.path, token); err != nil {
		return err
	}
	s.token = token
	s.principal = principal
	return nil
}

// SetPrincipal caches the principal fetched from the profile endpoint.
func (s *Store) SetPrincipal(principal any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = principal
}

// Clear drops the credential and principal and removes the persisted token
// file. Idempotent: clearing an already cleared session is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.principal = nil

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to remove token file: %w", err)
	}
	return nil
}

// TokenExpiry returns the expiry claim of the held credential when the
// credential is a JWT. The claim is read without signature verification; it
// is advisory display information only, the server remains the authority on
// expiry. Returns the zero time when no credential is held or the claim
// cannot be read.
func (s *Store) TokenExpiry() time.Time {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		log.Debug().Err(err).Msg("credential is not a parseable JWT")
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// writeTokenFile writes the credential with owner-only permissions using a
// temp file plus rename so the durable entry is replaced atomically.
func writeTokenFile(path, token string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, TokenFileName+".*")
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(os.FileMode(0600)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("unable to set token file permissions: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("unable to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("unable to close token file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("unable to replace token file: %w", err)
	}
	return nil
}
