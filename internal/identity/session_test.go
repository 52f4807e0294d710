// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/identity"
	"github.com/painlog/painlog/pkg/errutil"
)

func TestFileSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	s := identity.NewFileSession(path, "local")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got, "missing file means signed out")

	require.NoError(t, s.Save(&auth.Identity{Subject: "uid-1", Email: "user@example.com"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, &auth.Identity{Subject: "uid-1", Email: "user@example.com"}, got)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")
	got, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileSession_OtherProviderIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, identity.NewFileSession(path, "firebase").Save(&auth.Identity{Subject: "fb-1"}))

	got, err := identity.NewFileSession(path, "local").Load()

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileSession_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := identity.NewFileSession(path, "local").Load()

	errutil.AssertErrorCode(t, err, "SESSION_CORRUPT")
}

func TestFileSession_SaveNilClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := identity.NewFileSession(path, "local")
	require.NoError(t, s.Save(&auth.Identity{Subject: "uid-1"}))

	require.NoError(t, s.Save(nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMemorySession(t *testing.T) {
	var s identity.MemorySession
	id := &auth.Identity{Subject: "uid-1"}
	require.NoError(t, s.Save(id))
	id.Subject = "mutated"

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "uid-1", got.Subject)

	require.NoError(t, s.Clear())
	got, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}
