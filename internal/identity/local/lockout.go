// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package local

import "time"

// LockoutPolicy locks an account after repeated failed sign-ins.
type LockoutPolicy struct {
	// Threshold is the number of consecutive failures that locks the account.
	Threshold int
	// Duration is how long a lock lasts.
	Duration time.Duration
}

// DefaultLockoutPolicy locks for 15 minutes after 7 failures.
var DefaultLockoutPolicy = LockoutPolicy{Threshold: 7, Duration: 15 * time.Minute}

// Locked reports whether account is locked at now.
func (p LockoutPolicy) Locked(account *Account, now time.Time) bool {
	return account.LockedUntil != nil && now.Before(*account.LockedUntil)
}

// RecordFailure counts a failed attempt and reports whether it locked the
// account. An expired lock starts a fresh count.
func (p LockoutPolicy) RecordFailure(account *Account, now time.Time) bool {
	if account.LockedUntil != nil && !now.Before(*account.LockedUntil) {
		account.FailedAttempts = 0
		account.LockedUntil = nil
	}
	account.FailedAttempts++
	account.UpdatedAt = now
	if p.Threshold > 0 && account.FailedAttempts >= p.Threshold {
		until := now.Add(p.Duration)
		account.LockedUntil = &until
		return true
	}
	return false
}

// RecordSuccess clears the failure count and any lock.
func (p LockoutPolicy) RecordSuccess(account *Account, now time.Time) {
	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = now
}
