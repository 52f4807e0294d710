// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/pkg/errutil"
)

// Tracker records the current session and notifies subscribers when it
// changes. Providers embed it to implement auth.IdentityProvider's
// OnSessionChange.
//
// Changes are applied one at a time: every listener sees them in the order
// they were stored. Listeners must not sign in or out synchronously.
type Tracker struct {
	store  SessionStore
	logger *slog.Logger

	// change is held from storing a session until every listener has seen it.
	change sync.Mutex

	mu        sync.Mutex
	current   *auth.Identity
	listeners map[ulid.ULID]func(*auth.Identity)
}

// NewTracker restores the current session from store. An unreadable session
// is logged and treated as signed out.
func NewTracker(store SessionStore, logger *slog.Logger) *Tracker {
	if store == nil {
		store = &MemorySession{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	current, err := store.Load()
	if err != nil {
		errutil.LogError(logger, "discarding unreadable session", err)
		current = nil
	}
	return &Tracker{
		store:     store,
		logger:    logger,
		current:   current,
		listeners: make(map[ulid.ULID]func(*auth.Identity)),
	}
}

// Current returns the signed-in identity, or nil.
func (t *Tracker) Current() *auth.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneIdentity(t.current)
}

// SignedIn persists identity as the current session and notifies subscribers.
func (t *Tracker) SignedIn(identity *auth.Identity) error {
	t.change.Lock()
	defer t.change.Unlock()
	if err := t.store.Save(identity); err != nil {
		return err
	}
	t.publish(identity)
	return nil
}

// SignedOut removes the persisted session and notifies subscribers.
func (t *Tracker) SignedOut() error {
	t.change.Lock()
	defer t.change.Unlock()
	if err := t.store.Clear(); err != nil {
		return err
	}
	t.publish(nil)
	return nil
}

// OnSessionChange implements auth.IdentityProvider. fn receives the current
// session before OnSessionChange returns.
func (t *Tracker) OnSessionChange(fn func(*auth.Identity)) func() {
	id := ulid.Make()

	t.change.Lock()
	defer t.change.Unlock()
	t.mu.Lock()
	t.listeners[id] = fn
	current := cloneIdentity(t.current)
	t.mu.Unlock()

	t.logger.Debug("session listener added", "listener_id", id.String())
	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
			t.logger.Debug("session listener removed", "listener_id", id.String())
		})
	}
}

// Refresh reloads the stored session and publishes it when another process
// has signed in or out since it was last read.
func (t *Tracker) Refresh() error {
	t.change.Lock()
	defer t.change.Unlock()
	stored, err := t.store.Load()
	if err != nil {
		return err
	}
	t.mu.Lock()
	changed := !sameIdentity(t.current, stored)
	t.mu.Unlock()
	if changed {
		t.publish(stored)
	}
	return nil
}

// Poll calls Refresh every interval until ctx is done.
func (t *Tracker) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Refresh(); err != nil {
				errutil.LogErrorContext(ctx, t.logger, "session refresh failed", err)
			}
		}
	}
}

// Listeners returns the number of active subscriptions.
func (t *Tracker) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

func (t *Tracker) publish(identity *auth.Identity) {
	t.mu.Lock()
	t.current = cloneIdentity(identity)
	fns := make([]func(*auth.Identity), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	// Listeners run without mu so they may read Current or unsubscribe.
	for _, fn := range fns {
		fn(cloneIdentity(identity))
	}
}

func sameIdentity(a, b *auth.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
