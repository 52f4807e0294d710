// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painlog/painlog/pkg/errutil"
)

type fakePinger struct {
	pingErrs []error
	pings    int
	closes   int
}

func (p *fakePinger) Ping(context.Context) error {
	p.pings++
	if len(p.pingErrs) == 0 {
		return nil
	}
	err := p.pingErrs[0]
	p.pingErrs = p.pingErrs[1:]
	return err
}

func (p *fakePinger) Close() { p.closes++ }

func fastOptions(attempts uint64) ConnectOptions {
	return ConnectOptions{
		Attempts:       attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestConnectWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	p := &fakePinger{pingErrs: []error{errors.New("connection refused"), errors.New("connection refused")}}

	err := connectWithRetry(context.Background(), fastOptions(5), func(context.Context) (pinger, error) {
		return p, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, p.pings)
	assert.Equal(t, 2, p.closes, "failed pools are closed before retrying")
}

func TestConnectWithRetry_GivesUp(t *testing.T) {
	p := &fakePinger{pingErrs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"),
	}}

	err := connectWithRetry(context.Background(), fastOptions(3), func(context.Context) (pinger, error) {
		return p, nil
	})

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
	errutil.AssertErrorContext(t, err, "attempts", 3)
	assert.Equal(t, 3, p.pings)
}

func TestConnectWithRetry_OpenErrorIsNotRetried(t *testing.T) {
	calls := 0
	err := connectWithRetry(context.Background(), fastOptions(5), func(context.Context) (pinger, error) {
		calls++
		return nil, errors.New("bad config")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &fakePinger{pingErrs: []error{errors.New("down")}}

	opts := fastOptions(100)
	opts.InitialBackoff = time.Hour
	opts.MaxBackoff = time.Hour
	err := connectWithRetry(ctx, opts, func(context.Context) (pinger, error) {
		return p, nil
	})

	require.Error(t, err)
	assert.LessOrEqual(t, p.pings, 1)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", ConnectOptions{})

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}

func TestConnectOptions_Defaults(t *testing.T) {
	o := ConnectOptions{}.withDefaults()

	assert.Equal(t, uint64(5), o.Attempts)
	assert.Equal(t, 250*time.Millisecond, o.InitialBackoff)
	assert.Equal(t, 5*time.Second, o.MaxBackoff)
	assert.NotNil(t, o.Logger)
}
