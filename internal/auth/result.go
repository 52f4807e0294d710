// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

// Unit is the success value of operations that produce nothing.
type Unit = struct{}

// Result is exclusively either a success value or an *Error.
// The zero Result is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok returns a successful Result.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail returns a failed Result. It panics if err is nil, since a failure
// without an error would be indistinguishable from success.
func Fail[T any](err *Error) Result[T] {
	if err == nil {
		panic("auth: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// IsOk reports whether r holds a success value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Get returns the value and the error; exactly one of them is meaningful.
func (r Result[T]) Get() (T, *Error) {
	return r.value, r.err
}

// Err returns the error, or nil on success.
func (r Result[T]) Err() *Error {
	return r.err
}

// Match calls onOk or onErr depending on r and returns what it returns.
// Both arms are required so a failure can never be ignored by omission.
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(*Error) R) R {
	if r.err != nil {
		return onErr(r.err)
	}
	return onOk(r.value)
}
