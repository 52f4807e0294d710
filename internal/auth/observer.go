// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/painlog/painlog/pkg/errutil"
)

// SessionState is an immutable snapshot of who is signed in.
// An empty Error means no error.
type SessionState struct {
	User    *User  `json:"user"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// SessionObserver turns provider session notifications into SessionState
// snapshots. It owns the only subscription it makes: Start acquires it and
// Close releases it exactly once. A closed observer is finished; observing
// again means creating a new one, which starts out Loading.
type SessionObserver struct {
	provider IdentityProvider
	profiles ProfileStore
	messages *Messages
	logger   *slog.Logger
	metrics  *Metrics

	mu          sync.Mutex
	ctx         context.Context
	state       SessionState
	started     bool
	closed      bool
	generation  uint64
	unsubscribe func()
	consumers   map[*consumer]struct{}
}

type consumer struct {
	ch chan SessionState
}

// NewSessionObserver creates an observer in the Loading state.
func NewSessionObserver(provider IdentityProvider, profiles ProfileStore, opts ...Option) (*SessionObserver, error) {
	if provider == nil {
		return nil, oops.Code("OBSERVER_INVALID").Errorf("identity provider is required")
	}
	if profiles == nil {
		return nil, oops.Code("OBSERVER_INVALID").Errorf("profile store is required")
	}
	o := buildOptions(opts)
	if o.logger == nil {
		return nil, oops.Code("OBSERVER_INVALID").Errorf("logger is required")
	}
	if o.messages == nil {
		return nil, oops.Code("OBSERVER_INVALID").Errorf("messages are required")
	}

	return &SessionObserver{
		provider:  provider,
		profiles:  profiles,
		messages:  o.messages,
		logger:    o.logger,
		metrics:   o.metrics,
		state:     SessionState{Loading: true},
		consumers: make(map[*consumer]struct{}),
	}, nil
}

// Start subscribes to provider session changes. Profile lookups made on
// behalf of notifications carry ctx's values but not its cancellation.
func (o *SessionObserver) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return oops.Code("OBSERVER_CLOSED").Errorf("session observer is closed")
	}
	if o.started {
		o.mu.Unlock()
		return oops.Code("OBSERVER_ALREADY_STARTED").Errorf("session observer is already started")
	}
	o.started = true
	o.ctx = context.WithoutCancel(ctx)
	o.mu.Unlock()

	// Providers deliver the current session during OnSessionChange, so the
	// lock must not be held here.
	unsubscribe := o.provider.OnSessionChange(o.handle)

	o.mu.Lock()
	if o.closed {
		// Close ran while subscribing and had nothing to release.
		o.mu.Unlock()
		unsubscribe()
		return nil
	}
	o.unsubscribe = unsubscribe
	o.mu.Unlock()

	o.logger.DebugContext(ctx, "session observer started")
	return nil
}

// State returns the current snapshot.
func (o *SessionObserver) State() SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Updates returns a channel that receives the current snapshot immediately
// and every published snapshot after it. Slow readers only miss superseded
// snapshots; the latest one is always delivered. The channel is closed by
// cancel or by Close.
func (o *SessionObserver) Updates() (updates <-chan SessionState, cancel func()) {
	ch := make(chan SessionState, 1)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		close(ch)
		return ch, func() {}
	}

	c := &consumer{ch: ch}
	o.consumers[c] = struct{}{}
	ch <- o.state

	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.consumers[c]; ok {
			delete(o.consumers, c)
			close(c.ch)
		}
	}
}

// Close releases the provider subscription and closes every Updates channel.
// It is safe to call more than once.
func (o *SessionObserver) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	consumers := o.consumers
	o.consumers = nil
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for c := range consumers {
		close(c.ch)
	}

	o.logger.Debug("session observer closed")
	return nil
}

func (o *SessionObserver) handle(identity *Identity) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.generation++
	generation := o.generation
	ctx := o.ctx
	o.mu.Unlock()

	next, label := o.resolve(ctx, identity)

	o.mu.Lock()
	defer o.mu.Unlock()
	// A newer notification arrived while this one was resolving.
	if o.closed || generation != o.generation {
		return
	}
	o.state = next
	o.metrics.recordSession(label)
	for c := range o.consumers {
		deliverLatest(c.ch, next)
	}
}

func (o *SessionObserver) resolve(ctx context.Context, identity *Identity) (SessionState, string) {
	if identity == nil {
		o.logger.InfoContext(ctx, "session updated: signed out")
		return SessionState{}, sessionSignedOut
	}

	user, err := o.profiles.Get(ctx, identity.Subject)
	switch {
	case err == nil && user != nil:
		o.logger.InfoContext(ctx, "session updated: signed in", "user_id", identity.Subject)
		u := *user
		return SessionState{User: &u}, sessionSignedIn
	case err == nil, errors.Is(err, ErrNotFound):
		o.logger.ErrorContext(ctx, "session user has no profile", "user_id", identity.Subject)
		return SessionState{Error: o.messages.ForKind(KindUserNotFound)}, sessionError
	default:
		errutil.LogErrorContext(ctx, o.logger, "failed to load session profile", err, "user_id", identity.Subject)
		return SessionState{Error: o.messages.Text(keyProfileFetch)}, sessionError
	}
}

// deliverLatest replaces any unread snapshot in ch with state. Callers hold
// the observer lock, so no other sender competes for the buffer slot.
func deliverLatest(ch chan SessionState, state SessionState) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- state
}
