// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package local authenticates against accounts stored in PostgreSQL.
package local

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/identity"
	"github.com/painlog/painlog/pkg/errutil"
)

// ProviderName identifies sessions created by the local provider.
const ProviderName = "local"

const minPasswordRunes = 6

// Option configures a Provider.
type Option func(*Provider)

// WithHasher overrides the password hasher.
func WithHasher(h PasswordHasher) Option {
	return func(p *Provider) { p.hasher = h }
}

// WithLockoutPolicy overrides the lockout policy.
func WithLockoutPolicy(policy LockoutPolicy) Option {
	return func(p *Provider) { p.lockout = policy }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// Provider implements auth.IdentityProvider over an AccountRepository.
type Provider struct {
	*identity.Tracker

	accounts AccountRepository
	hasher   PasswordHasher
	lockout  LockoutPolicy
	now      func() time.Time
	logger   *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewProvider creates a Provider. tracker holds the session; accounts is
// required.
func NewProvider(accounts AccountRepository, tracker *identity.Tracker, opts ...Option) (*Provider, error) {
	if accounts == nil {
		return nil, oops.Code("LOCAL_PROVIDER_INVALID").Errorf("account repository is required")
	}
	if tracker == nil {
		return nil, oops.Code("LOCAL_PROVIDER_INVALID").Errorf("session tracker is required")
	}
	p := &Provider{
		Tracker:  tracker,
		accounts: accounts,
		hasher:   NewArgon2idHasher(DefaultArgon2Params),
		lockout:  DefaultLockoutPolicy,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SignIn implements auth.IdentityProvider.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	email = NormalizeEmail(email)
	if !auth.ValidEmail(email) {
		return nil, auth.NewProviderError(auth.CodeInvalidEmail, "The email address is badly formatted.")
	}

	account, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		// Spend the same work as a real check so timing does not reveal
		// which addresses are registered.
		p.verifyDummy(password)
		return nil, auth.NewProviderError(auth.CodeUserNotFound, "There is no account for this email.")
	}
	if err != nil {
		return nil, err
	}

	now := p.now()
	if account.Disabled {
		return nil, auth.NewProviderError(auth.CodeUserDisabled, "The account has been disabled.")
	}
	if p.lockout.Locked(account, now) {
		return nil, auth.NewProviderError(auth.CodeTooManyRequests, "Too many failed attempts. Try again later.")
	}

	ok, err := p.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, oops.Code("LOCAL_VERIFY_FAILED").With("account_id", account.ID.String()).Wrap(err)
	}
	if !ok {
		locked := p.lockout.RecordFailure(account, now)
		if err := p.accounts.Update(ctx, account); err != nil {
			errutil.LogErrorContext(ctx, p.logger, "failed to record sign-in failure", err,
				"account_id", account.ID.String())
		}
		if locked {
			p.logger.WarnContext(ctx, "account locked",
				"account_id", account.ID.String(),
				"failed_attempts", account.FailedAttempts)
			return nil, auth.NewProviderError(auth.CodeTooManyRequests, "Too many failed attempts. Try again later.")
		}
		return nil, auth.NewProviderError(auth.CodeWrongPassword, "The password is invalid.")
	}

	p.lockout.RecordSuccess(account, now)
	if p.hasher.NeedsRehash(account.PasswordHash) {
		if rehashed, err := p.hasher.Hash(password); err == nil {
			account.PasswordHash = rehashed
		}
	}
	if err := p.accounts.Update(ctx, account); err != nil {
		errutil.LogErrorContext(ctx, p.logger, "failed to reset sign-in failures", err,
			"account_id", account.ID.String())
	}

	signedIn := &auth.Identity{Subject: account.ID.String(), Email: account.Email}
	if err := p.SignedIn(signedIn); err != nil {
		return nil, err
	}
	return signedIn, nil
}

// SignUp implements auth.IdentityProvider.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*auth.Identity, error) {
	email = NormalizeEmail(email)
	if !auth.ValidEmail(email) {
		return nil, auth.NewProviderError(auth.CodeInvalidEmail, "The email address is badly formatted.")
	}
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return nil, auth.NewProviderError(auth.CodeWeakPassword, "Password should be at least 6 characters.")
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	account := NewAccount(email, hash, p.now())
	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, auth.NewProviderError(auth.CodeEmailAlreadyInUse, "The email address is already in use.")
		}
		return nil, err
	}
	p.logger.InfoContext(ctx, "account created", "account_id", account.ID.String())

	signedIn := &auth.Identity{Subject: account.ID.String(), Email: account.Email}
	if err := p.SignedIn(signedIn); err != nil {
		return nil, err
	}
	return signedIn, nil
}

// SignOut implements auth.IdentityProvider.
func (p *Provider) SignOut(_ context.Context) error {
	return p.SignedOut()
}

func (p *Provider) verifyDummy(password string) {
	p.dummyOnce.Do(func() {
		hash, err := p.hasher.Hash("painlog-timing-equalizer")
		if err == nil {
			p.dummyHash = hash
		}
	})
	if p.dummyHash != "" {
		_, _ = p.hasher.Verify(password, p.dummyHash) //nolint:errcheck // result is discarded
	}
}

var _ auth.IdentityProvider = (*Provider)(nil)
