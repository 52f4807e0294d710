// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/auth/authtest"
	"github.com/painlog/painlog/internal/auth/mocks"
	"github.com/painlog/painlog/pkg/errutil"
)

func newTestObserver(t *testing.T, provider auth.IdentityProvider, profiles auth.ProfileStore, opts ...auth.Option) *auth.SessionObserver {
	t.Helper()
	opts = append([]auth.Option{auth.WithLogger(discardLogger())}, opts...)
	obs, err := auth.NewSessionObserver(provider, profiles, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Close() })
	return obs
}

func TestNewSessionObserver_NilDependencies(t *testing.T) {
	_, err := auth.NewSessionObserver(nil, authtest.NewMemoryProfileStore())
	errutil.AssertErrorCode(t, err, "OBSERVER_INVALID")

	_, err = auth.NewSessionObserver(authtest.NewFakeProvider(), nil)
	errutil.AssertErrorCode(t, err, "OBSERVER_INVALID")

	_, err = auth.NewSessionObserver(authtest.NewFakeProvider(), authtest.NewMemoryProfileStore(), auth.WithLogger(nil))
	errutil.AssertErrorCode(t, err, "OBSERVER_INVALID")
}

func TestSessionObserver_StartsLoading(t *testing.T) {
	obs := newTestObserver(t, authtest.NewFakeProvider(), authtest.NewMemoryProfileStore())

	assert.Equal(t, auth.SessionState{Loading: true}, obs.State())
}

func TestSessionObserver_SignedOut(t *testing.T) {
	obs := newTestObserver(t, authtest.NewFakeProvider(), authtest.NewMemoryProfileStore())

	require.NoError(t, obs.Start(context.Background()))

	assert.Equal(t, auth.SessionState{User: nil, Loading: false, Error: ""}, obs.State())
}

func TestSessionObserver_SignedInWithProfile(t *testing.T) {
	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	user := auth.User{ID: "uid-1", Email: "user@example.com", CreatedAt: "2026-01-02T03:04:05.000Z"}
	profiles.Put(user)
	provider.Emit(&auth.Identity{Subject: "uid-1", Email: "user@example.com"})
	obs := newTestObserver(t, provider, profiles)

	require.NoError(t, obs.Start(context.Background()))

	state := obs.State()
	require.NotNil(t, state.User)
	assert.Equal(t, user, *state.User)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestSessionObserver_MissingProfileIsNotCreated(t *testing.T) {
	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	provider.Emit(&auth.Identity{Subject: "uid-1"})
	obs := newTestObserver(t, provider, profiles)

	require.NoError(t, obs.Start(context.Background()))

	assert.Equal(t, auth.SessionState{Error: "ユーザー情報が見つかりません"}, obs.State())
	assert.Zero(t, profiles.Sets())
}

func TestSessionObserver_ProfileFetchFailure(t *testing.T) {
	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	profiles.GetErr = errors.New("connection refused")
	provider.Emit(&auth.Identity{Subject: "uid-1"})
	obs := newTestObserver(t, provider, profiles)

	require.NoError(t, obs.Start(context.Background()))

	assert.Equal(t, auth.SessionState{Error: "ユーザー情報の取得に失敗しました"}, obs.State())
}

func TestSessionObserver_FollowsSessionChanges(t *testing.T) {
	provider := authtest.NewFakeProvider()
	provider.AddAccount("uid-1", "user@example.com", "password123")
	profiles := authtest.NewMemoryProfileStore()
	svc := newTestService(t, provider, profiles)
	obs := newTestObserver(t, provider, profiles)
	require.NoError(t, obs.Start(context.Background()))

	require.True(t, svc.Login(context.Background(), auth.LoginCredentials{Email: "user@example.com", Password: "password123"}).IsOk())

	// The provider notifies before the profile exists; a fresh notification
	// after login resolves it.
	provider.Emit(provider.Current())
	state := obs.State()
	require.NotNil(t, state.User)
	assert.Equal(t, "uid-1", state.User.ID)

	require.True(t, svc.Logout(context.Background()).IsOk())
	assert.Equal(t, auth.SessionState{}, obs.State())
}

func TestSessionObserver_StartTwice(t *testing.T) {
	obs := newTestObserver(t, authtest.NewFakeProvider(), authtest.NewMemoryProfileStore())
	require.NoError(t, obs.Start(context.Background()))

	err := obs.Start(context.Background())

	errutil.AssertErrorCode(t, err, "OBSERVER_ALREADY_STARTED")
}

func TestSessionObserver_StartAfterClose(t *testing.T) {
	provider := authtest.NewFakeProvider()
	obs := newTestObserver(t, provider, authtest.NewMemoryProfileStore())
	require.NoError(t, obs.Close())

	err := obs.Start(context.Background())

	errutil.AssertErrorCode(t, err, "OBSERVER_CLOSED")
	assert.Zero(t, provider.Listeners())
}

func TestSessionObserver_CloseReleasesSubscriptionOnce(t *testing.T) {
	provider := mocks.NewMockIdentityProvider(t)
	releases := 0
	provider.EXPECT().OnSessionChange(mock.Anything).
		RunAndReturn(func(fn func(*auth.Identity)) func() {
			fn(nil)
			return func() { releases++ }
		}).Once()
	obs := newTestObserver(t, provider, mocks.NewMockProfileStore(t))
	require.NoError(t, obs.Start(context.Background()))

	require.NoError(t, obs.Close())
	require.NoError(t, obs.Close())

	assert.Equal(t, 1, releases)
}

func TestSessionObserver_NoUpdatesAfterClose(t *testing.T) {
	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	obs := newTestObserver(t, provider, profiles)
	require.NoError(t, obs.Start(context.Background()))
	before := obs.State()

	require.NoError(t, obs.Close())
	provider.Emit(&auth.Identity{Subject: "uid-1"})

	assert.Equal(t, before, obs.State())
	assert.Zero(t, provider.Listeners())
	assert.Equal(t, 1, provider.Unsubscribes())
}

func TestSessionObserver_Updates(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	profiles.Put(auth.User{ID: "uid-1", Email: "user@example.com"})
	obs := newTestObserver(t, provider, profiles)

	updates, cancel := obs.Updates()
	defer cancel()
	assert.Equal(t, auth.SessionState{Loading: true}, <-updates)

	require.NoError(t, obs.Start(context.Background()))
	assert.Equal(t, auth.SessionState{}, <-updates)

	provider.Emit(&auth.Identity{Subject: "uid-1"})
	got := <-updates
	require.NotNil(t, got.User)
	assert.Equal(t, "uid-1", got.User.ID)

	require.NoError(t, obs.Close())
	_, open := <-updates
	assert.False(t, open, "updates channel should be closed")
}

func TestSessionObserver_SlowConsumerSeesLatest(t *testing.T) {
	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	profiles.Put(auth.User{ID: "uid-1"})
	profiles.Put(auth.User{ID: "uid-2"})
	obs := newTestObserver(t, provider, profiles)
	require.NoError(t, obs.Start(context.Background()))

	updates, cancel := obs.Updates()
	defer cancel()

	provider.Emit(&auth.Identity{Subject: "uid-1"})
	provider.Emit(&auth.Identity{Subject: "uid-2"})

	latest := <-updates
	require.NotNil(t, latest.User)
	assert.Equal(t, "uid-2", latest.User.ID)
}

func TestSessionObserver_CancelClosesChannel(t *testing.T) {
	obs := newTestObserver(t, authtest.NewFakeProvider(), authtest.NewMemoryProfileStore())

	updates, cancel := obs.Updates()
	<-updates
	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)
}

func TestSessionObserver_UpdatesAfterClose(t *testing.T) {
	obs := newTestObserver(t, authtest.NewFakeProvider(), authtest.NewMemoryProfileStore())
	require.NoError(t, obs.Close())

	updates, cancel := obs.Updates()
	defer cancel()

	_, open := <-updates
	assert.False(t, open)
}

// gatedStore blocks Get for one id until released.
type gatedStore struct {
	*authtest.MemoryProfileStore
	gatedID string
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, id string) (*auth.User, error) {
	if id == s.gatedID {
		close(s.entered)
		<-s.release
	}
	return s.MemoryProfileStore.Get(ctx, id)
}

func TestSessionObserver_DiscardsSupersededNotification(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := authtest.NewFakeProvider()
	store := &gatedStore{
		MemoryProfileStore: authtest.NewMemoryProfileStore(),
		gatedID:            "uid-slow",
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	store.Put(auth.User{ID: "uid-slow"})
	obs := newTestObserver(t, provider, store)
	require.NoError(t, obs.Start(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		provider.Emit(&auth.Identity{Subject: "uid-slow"})
	}()

	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("profile lookup never started")
	}

	// A sign-out arrives while the slow lookup is still in flight.
	provider.Emit(nil)
	close(store.release)
	wg.Wait()

	assert.Equal(t, auth.SessionState{}, obs.State())
}

func TestSessionObserver_ConcurrentNotifications(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := authtest.NewFakeProvider()
	profiles := authtest.NewMemoryProfileStore()
	profiles.Put(auth.User{ID: "uid-1"})
	obs := newTestObserver(t, provider, profiles)
	require.NoError(t, obs.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				provider.Emit(&auth.Identity{Subject: "uid-1"})
				return
			}
			provider.Emit(nil)
		}(i)
	}
	wg.Wait()

	state := obs.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}
