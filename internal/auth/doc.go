// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package auth turns user-supplied credentials into an authenticated User or
// a classified, user-facing Error.
//
// # Pipeline
//
// Service.Login, Service.Register and Service.Logout each return a Result:
//   - credentials are validated first; invalid input never reaches the provider
//   - provider rejections are translated into a Kind with a canonical message
//   - on success the user's profile is loaded, or created on first sign-in
//
// Store failures surface as PROVIDER_ERROR. Nothing is retried, and a profile
// write failure after a successful sign-in does not sign the provider out.
//
// # Session state
//
// SessionObserver subscribes to provider session changes and republishes
// each one as a SessionState snapshot, readable with State or streamed with
// Updates.
//
// # Collaborators
//
// IdentityProvider and ProfileStore are implemented elsewhere: see
// internal/identity/local, internal/identity/firebase and internal/auth/postgres.
package auth
