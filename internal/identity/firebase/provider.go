// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package firebase authenticates against the Firebase Identity Toolkit REST API.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/identity"
)

// ProviderName identifies sessions created by the Firebase provider.
const ProviderName = "firebase"

// DefaultBaseURL is the public Identity Toolkit endpoint.
const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Config configures a Provider.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each request. Zero means 10s.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Provider implements auth.IdentityProvider with email/password accounts held
// by Firebase Authentication.
type Provider struct {
	*identity.Tracker

	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewProvider creates a Provider that records sessions in tracker.
func NewProvider(cfg Config, tracker *identity.Tracker) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, oops.Code("FIREBASE_PROVIDER_INVALID").Errorf("api key is required")
	}
	if tracker == nil {
		return nil, oops.Code("FIREBASE_PROVIDER_INVALID").Errorf("session tracker is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Provider{
		Tracker: tracker,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn implements auth.IdentityProvider.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	return p.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp implements auth.IdentityProvider.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*auth.Identity, error) {
	return p.authenticate(ctx, "accounts:signUp", email, password)
}

// SignOut implements auth.IdentityProvider. ID tokens are not revocable from
// the client, so signing out only forgets the local session.
func (p *Provider) SignOut(_ context.Context) error {
	return p.SignedOut()
}

func (p *Provider) authenticate(ctx context.Context, method, email, password string) (*auth.Identity, error) {
	var resp tokenResponse
	if err := p.post(ctx, method, credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}

	signedIn, err := identityFromToken(resp)
	if err != nil {
		return nil, err
	}
	if err := p.SignedIn(signedIn); err != nil {
		return nil, err
	}
	return signedIn, nil
}

func (p *Provider) post(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return oops.Code("FIREBASE_REQUEST_FAILED").With("method", method).Wrap(err)
	}

	endpoint := p.baseURL + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return oops.Code("FIREBASE_REQUEST_FAILED").With("method", method).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := p.client.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "identity toolkit unreachable", "method", method, "error", err)
		return auth.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
	}
	defer res.Body.Close() //nolint:errcheck // read-only body

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return auth.NewProviderError(auth.CodeNetworkRequestFailed, err.Error())
	}
	p.logger.DebugContext(ctx, "identity toolkit responded",
		"method", method,
		"status", res.StatusCode,
		"duration", time.Since(start))

	if res.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error.Message == "" {
			return auth.NewProviderError(auth.CodeInternalError, http.StatusText(res.StatusCode))
		}
		return providerError(apiErr.Error.Message)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return oops.Code("FIREBASE_RESPONSE_INVALID").With("method", method).Wrap(err)
	}
	return nil
}

// errorCodes maps Identity Toolkit error messages to client SDK codes.
var errorCodes = map[string]string{
	"EMAIL_NOT_FOUND":             auth.CodeUserNotFound,
	"INVALID_PASSWORD":            auth.CodeWrongPassword,
	"USER_DISABLED":               auth.CodeUserDisabled,
	"INVALID_LOGIN_CREDENTIALS":   auth.CodeInvalidLoginCredentials,
	"INVALID_EMAIL":               auth.CodeInvalidEmail,
	"MISSING_EMAIL":               auth.CodeInvalidEmail,
	"EMAIL_EXISTS":                auth.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               auth.CodeWeakPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": auth.CodeTooManyRequests,
}

// providerError converts an API message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" into a
// ProviderError. Unmapped messages keep their own name as the code.
func providerError(message string) *auth.ProviderError {
	name, detail, _ := strings.Cut(message, ":")
	name = strings.TrimSpace(name)
	code, ok := errorCodes[name]
	if !ok {
		code = "auth/" + strings.ReplaceAll(strings.ToLower(name), "_", "-")
	}
	if detail = strings.TrimSpace(detail); detail == "" {
		detail = name
	}
	return auth.NewProviderError(code, detail)
}

type idTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// identityFromToken reads the account from the returned ID token. The token
// came straight from Google over TLS, so its signature is not re-verified.
func identityFromToken(resp tokenResponse) (*auth.Identity, error) {
	if resp.IDToken == "" {
		return nil, oops.Code("FIREBASE_TOKEN_INVALID").Errorf("response has no id token")
	}
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, &claims); err != nil {
		return nil, oops.Code("FIREBASE_TOKEN_INVALID").Wrap(err)
	}

	subject := claims.Subject
	if subject == "" {
		subject = resp.LocalID
	}
	if subject == "" {
		return nil, oops.Code("FIREBASE_TOKEN_INVALID").Errorf("id token has no subject")
	}
	email := claims.Email
	if email == "" {
		email = resp.Email
	}
	return &auth.Identity{Subject: subject, Email: email}, nil
}

var _ auth.IdentityProvider = (*Provider)(nil)
