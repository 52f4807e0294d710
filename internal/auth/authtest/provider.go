// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package authtest provides in-memory collaborators for exercising the auth
// pipeline and session observer without a real identity provider or store.
package authtest

import (
	"context"
	"strconv"
	"sync"

	"github.com/painlog/painlog/internal/auth"
)

// FakeProvider is an in-memory IdentityProvider. Accounts are keyed by email.
// Failures can be injected per operation; an injected error is returned
// instead of running the operation.
type FakeProvider struct {
	mu          sync.Mutex
	accounts    map[string]fakeAccount
	current     *auth.Identity
	listeners   map[int]func(*auth.Identity)
	nextID      int
	nextSubject int

	signInCalls  int
	signUpCalls  int
	signOutCalls int
	unsubscribes int

	SignInErr  error
	SignUpErr  error
	SignOutErr error
}

type fakeAccount struct {
	identity auth.Identity
	password string
}

// NewFakeProvider returns a provider with no accounts and no session.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		accounts:  make(map[string]fakeAccount),
		listeners: make(map[int]func(*auth.Identity)),
	}
}

// AddAccount registers an account and returns its identity.
func (p *FakeProvider) AddAccount(subject, email, password string) auth.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := auth.Identity{Subject: subject, Email: email}
	p.accounts[email] = fakeAccount{identity: id, password: password}
	return id
}

// SignIn implements auth.IdentityProvider.
func (p *FakeProvider) SignIn(_ context.Context, email, password string) (*auth.Identity, error) {
	p.mu.Lock()
	p.signInCalls++
	if p.SignInErr != nil {
		err := p.SignInErr
		p.mu.Unlock()
		return nil, err
	}
	acct, ok := p.accounts[email]
	if !ok {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.CodeUserNotFound, "no account for "+email)
	}
	if acct.password != password {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.CodeWrongPassword, "wrong password")
	}
	id := acct.identity
	p.current = &id
	p.mu.Unlock()

	p.notify(&id)
	return &id, nil
}

// SignUp implements auth.IdentityProvider.
func (p *FakeProvider) SignUp(_ context.Context, email, password string) (*auth.Identity, error) {
	p.mu.Lock()
	p.signUpCalls++
	if p.SignUpErr != nil {
		err := p.SignUpErr
		p.mu.Unlock()
		return nil, err
	}
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, auth.NewProviderError(auth.CodeEmailAlreadyInUse, "email exists")
	}
	p.nextSubject++
	id := auth.Identity{Subject: "uid-" + strconv.Itoa(p.nextSubject), Email: email}
	p.accounts[email] = fakeAccount{identity: id, password: password}
	p.current = &id
	p.mu.Unlock()

	p.notify(&id)
	return &id, nil
}

// SignOut implements auth.IdentityProvider.
func (p *FakeProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.signOutCalls++
	if p.SignOutErr != nil {
		err := p.SignOutErr
		p.mu.Unlock()
		return err
	}
	p.current = nil
	p.mu.Unlock()

	p.notify(nil)
	return nil
}

// OnSessionChange implements auth.IdentityProvider. fn is called with the
// current session before OnSessionChange returns.
func (p *FakeProvider) OnSessionChange(fn func(*auth.Identity)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	current := copyIdentity(p.current)
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners, id)
			p.unsubscribes++
		})
	}
}

// Emit delivers identity to every listener as if the session had changed.
func (p *FakeProvider) Emit(identity *auth.Identity) {
	p.mu.Lock()
	p.current = copyIdentity(identity)
	p.mu.Unlock()
	p.notify(identity)
}

// Listeners returns the number of active subscriptions.
func (p *FakeProvider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Unsubscribes returns how many subscriptions have been released.
func (p *FakeProvider) Unsubscribes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unsubscribes
}

// SignInCalls returns how many times SignIn was called.
func (p *FakeProvider) SignInCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signInCalls
}

// SignUpCalls returns how many times SignUp was called.
func (p *FakeProvider) SignUpCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signUpCalls
}

// SignOutCalls returns how many times SignOut was called.
func (p *FakeProvider) SignOutCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOutCalls
}

// Current returns the signed-in identity, or nil.
func (p *FakeProvider) Current() *auth.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyIdentity(p.current)
}

func (p *FakeProvider) notify(identity *auth.Identity) {
	p.mu.Lock()
	fns := make([]func(*auth.Identity), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(identity))
	}
}

func copyIdentity(identity *auth.Identity) *auth.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}

var _ auth.IdentityProvider = (*FakeProvider)(nil)
