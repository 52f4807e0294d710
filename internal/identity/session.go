// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package identity holds what every identity provider shares: the record of
// who is signed in and the fan-out of session changes to subscribers.
package identity

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/auth"
)

// SessionStore persists the signed-in identity between process runs.
type SessionStore interface {
	// Load returns the stored identity, or nil when nobody is signed in.
	Load() (*auth.Identity, error)
	Save(identity *auth.Identity) error
	Clear() error
}

type sessionRecord struct {
	Subject    string    `json:"subject"`
	Email      string    `json:"email"`
	Provider   string    `json:"provider"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// FileSession stores the session as a JSON document readable only by the
// current user.
type FileSession struct {
	path     string
	provider string
	now      func() time.Time
}

// NewFileSession returns a FileSession at path. provider is recorded so a
// session created by one provider kind is not picked up by another.
func NewFileSession(path, provider string) *FileSession {
	return &FileSession{path: path, provider: provider, now: time.Now}
}

// Path returns the session file location.
func (s *FileSession) Path() string {
	return s.path
}

// Load implements SessionStore. A missing file, or one written by a
// different provider, means signed out.
func (s *FileSession) Load() (*auth.Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_READ_FAILED").With("path", s.path).Wrap(err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, oops.Code("SESSION_CORRUPT").With("path", s.path).Wrap(err)
	}
	if rec.Subject == "" || rec.Provider != s.provider {
		return nil, nil
	}
	return &auth.Identity{Subject: rec.Subject, Email: rec.Email}, nil
}

// Save implements SessionStore. The file is replaced atomically.
func (s *FileSession) Save(identity *auth.Identity) error {
	if identity == nil {
		return s.Clear()
	}
	data, err := json.MarshalIndent(sessionRecord{
		Subject:    identity.Subject,
		Email:      identity.Email,
		Provider:   s.provider,
		SignedInAt: s.now().UTC(),
	}, "", "  ")
	if err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("operation", "marshal session").Wrap(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("path", dir).Wrap(err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("path", dir).Wrap(err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.Code("SESSION_WRITE_FAILED").With("path", tmp.Name()).Wrap(err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return oops.Code("SESSION_WRITE_FAILED").With("path", tmp.Name()).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("path", tmp.Name()).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}

// Clear implements SessionStore. Clearing an absent session is not an error.
func (s *FileSession) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("SESSION_CLEAR_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}

// MemorySession is a SessionStore that lives only as long as the process.
type MemorySession struct {
	mu       sync.Mutex
	identity *auth.Identity
}

// Load implements SessionStore.
func (m *MemorySession) Load() (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneIdentity(m.identity), nil
}

// Save implements SessionStore.
func (m *MemorySession) Save(identity *auth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = cloneIdentity(identity)
	return nil
}

// Clear implements SessionStore.
func (m *MemorySession) Clear() error {
	return m.Save(nil)
}

func cloneIdentity(identity *auth.Identity) *auth.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
