// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/painlog/painlog/pkg/errutil"
)

// Operation names used in logs, spans and metrics.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
)

var successMessages = map[string]string{
	OpLogin:    "user logged in",
	OpRegister: "user registered",
	OpLogout:   "user logged out",
}

var failureMessages = map[string]string{
	OpLogin:    "login failed",
	OpRegister: "registration failed",
	OpLogout:   "logout failed",
}

// Service runs the credential pipeline: validate, authenticate with the
// identity provider, then load or create the user's profile.
//
// A Service holds no per-call state and is safe for concurrent use. It never
// retries and never signs the provider session out on its own.
type Service struct {
	provider   IdentityProvider
	profiles   ProfileStore
	messages   *Messages
	validator  *Validator
	translator *Translator
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

// NewService creates a Service. provider and profiles are required.
func NewService(provider IdentityProvider, profiles ProfileStore, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("identity provider is required")
	}
	if profiles == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("profile store is required")
	}
	o := buildOptions(opts)
	if o.logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}
	if o.messages == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("messages are required")
	}
	if o.now == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("clock is required")
	}

	return &Service{
		provider:   provider,
		profiles:   profiles,
		messages:   o.messages,
		validator:  NewValidator(o.messages),
		translator: NewTranslator(o.messages),
		logger:     o.logger,
		metrics:    o.metrics,
		tracer:     o.tracer,
		now:        o.now,
	}, nil
}

// Login signs in an existing account and returns its profile, creating the
// profile if this identity has none yet.
func (s *Service) Login(ctx context.Context, creds LoginCredentials) Result[User] {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	result := s.login(ctx, creds)
	user, appErr := result.Get()
	s.finish(ctx, span, OpLogin, user.ID, appErr, creds.Email)
	return result
}

func (s *Service) login(ctx context.Context, creds LoginCredentials) Result[User] {
	if appErr := s.validator.Login(creds).Err(); appErr != nil {
		return Fail[User](appErr)
	}

	identity, err := s.provider.SignIn(ctx, creds.Email, creds.Password)
	if appErr := s.checkIdentity(identity, err); appErr != nil {
		return Fail[User](appErr)
	}

	user, err := s.profiles.Get(ctx, identity.Subject)
	switch {
	case err == nil && user != nil:
		return Ok(*user)
	case err == nil, errors.Is(err, ErrNotFound):
		return s.createProfile(ctx, identity, creds.Email)
	default:
		return Fail[User](s.storeError(keyProfileFetch, "get profile", identity.Subject, err))
	}
}

// Register creates an account and its profile. The identity is new, so the
// profile is written without looking it up first.
func (s *Service) Register(ctx context.Context, creds RegisterCredentials) Result[User] {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer span.End()

	result := s.register(ctx, creds)
	user, appErr := result.Get()
	s.finish(ctx, span, OpRegister, user.ID, appErr, creds.Email)
	return result
}

func (s *Service) register(ctx context.Context, creds RegisterCredentials) Result[User] {
	if appErr := s.validator.Register(creds).Err(); appErr != nil {
		return Fail[User](appErr)
	}

	identity, err := s.provider.SignUp(ctx, creds.Email, creds.Password)
	if appErr := s.checkIdentity(identity, err); appErr != nil {
		return Fail[User](appErr)
	}

	return s.createProfile(ctx, identity, creds.Email)
}

// Logout ends the provider session.
func (s *Service) Logout(ctx context.Context) Result[Unit] {
	ctx, span := s.tracer.Start(ctx, "auth.Logout")
	defer span.End()

	var appErr *Error
	if err := s.provider.SignOut(ctx); err != nil {
		appErr = s.translator.FromError(err)
	}
	s.finish(ctx, span, OpLogout, "", appErr, "")
	if appErr != nil {
		return Fail[Unit](appErr)
	}
	return Ok(Unit{})
}

func (s *Service) checkIdentity(identity *Identity, err error) *Error {
	if err != nil {
		return s.translator.FromError(err)
	}
	if identity == nil || identity.Subject == "" {
		return s.translator.Translate(CodeInternalError, "provider returned no identity")
	}
	return nil
}

// createProfile writes the profile for a freshly authenticated identity. A
// failure here leaves the provider session signed in; the next Login finds
// no profile and writes it again.
func (s *Service) createProfile(ctx context.Context, identity *Identity, email string) Result[User] {
	user := NewUser(identity, email, s.now())
	if err := s.profiles.Set(ctx, &user); err != nil {
		return Fail[User](s.storeError(keyProfileSave, "set profile", identity.Subject, err))
	}
	return Ok(user)
}

func (s *Service) storeError(key, operation, userID string, err error) *Error {
	return WrapError(KindProvider, s.messages.Text(key), StoreDetails{
		Operation: operation,
		UserID:    userID,
	}, err)
}

// finish records the single log entry, span status and metric for a
// terminal outcome.
func (s *Service) finish(ctx context.Context, span trace.Span, op, userID string, appErr *Error, email string) {
	s.metrics.recordAttempt(op, appErr)

	if appErr == nil {
		span.SetAttributes(attribute.String("auth.outcome", outcomeSuccess))
		if userID != "" {
			span.SetAttributes(attribute.String("auth.user_id", userID))
			s.logger.InfoContext(ctx, successMessages[op], "operation", op, "user_id", userID)
			return
		}
		s.logger.InfoContext(ctx, successMessages[op], "operation", op)
		return
	}

	span.SetAttributes(attribute.String("auth.outcome", string(appErr.Kind)))
	span.SetStatus(codes.Error, string(appErr.Kind))

	attrs := []any{"operation", op}
	if email != "" {
		attrs = append(attrs, "email", email)
	}
	if details, ok := appErr.Details.(StoreDetails); ok {
		attrs = append(attrs, "user_id", details.UserID, "provider_session_retained", true)
	}
	errutil.LogErrorContext(ctx, s.logger, failureMessages[op], appErr, attrs...)
}
