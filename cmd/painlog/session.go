// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/pkg/errutil"
)

var errSessionLoading = errors.New("session not resolved yet")

type sessionConfig struct {
	watch       bool
	metricsAddr string
}

// NewSessionCmd creates the session subcommand.
func NewSessionCmd(a *app) *cobra.Command {
	cfg := &sessionConfig{}
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the signed-in user",
		Long: `Show the current session. With --watch, print every session change
as a JSON line until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if cfg.watch {
				var stop context.CancelFunc
				ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
			}
			return runSession(ctx, cmd, a, cfg)
		},
	}
	cmd.Flags().BoolVar(&cfg.watch, "watch", false, "stream session changes until interrupted")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /session on this address while watching (default: metrics.addr)")
	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, a *app, cfg *sessionConfig) error {
	backend, err := a.deps.OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	opts := []auth.Option{auth.WithLogger(a.logger), auth.WithMessages(a.messages())}

	var (
		obs    *auth.SessionObserver
		server ObservabilityServer
	)
	metricsAddr := a.cfg.Metrics.Addr
	if cfg.metricsAddr != "" {
		metricsAddr = cfg.metricsAddr
	}
	if cfg.watch && metricsAddr != "" {
		// obs is assigned before the server starts serving.
		server = a.deps.NewObservabilityServer(metricsAddr, func() error {
			if obs.State().Loading {
				return errSessionLoading
			}
			return nil
		}, a.logger)
		server.Handle("GET /session", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			//nolint:errcheck // the client may already be gone
			json.NewEncoder(w).Encode(obs.State())
		}))
		opts = append(opts, auth.WithMetrics(auth.NewMetrics(server.Registry())))
	}

	obs, err = auth.NewSessionObserver(backend.Provider, backend.Profiles, opts...)
	if err != nil {
		return err
	}

	if !cfg.watch {
		if err := obs.Start(ctx); err != nil {
			return err
		}
		defer obs.Close() //nolint:errcheck // Close never fails
		return printState(cmd, a, obs.State())
	}

	if server != nil {
		errCh, err := server.Start()
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := server.Stop(stopCtx); err != nil {
				errutil.LogError(a.logger, "failed to stop metrics server", err)
			}
		}()
		go func() {
			for serveErr := range errCh {
				errutil.LogError(a.logger, "metrics server failed", serveErr)
			}
		}()
	}
	return watchSession(ctx, cmd, a, backend, obs)
}

// watchSession streams snapshots until ctx ends.
func watchSession(ctx context.Context, cmd *cobra.Command, a *app, backend *Backend, obs *auth.SessionObserver) error {
	if err := obs.Start(ctx); err != nil {
		return err
	}
	defer obs.Close() //nolint:errcheck // Close never fails

	updates, cancel := obs.Updates()
	defer cancel()

	if backend.Poll != nil {
		pollCtx, stopPoll := context.WithCancel(ctx)
		defer stopPoll()
		go backend.Poll(pollCtx, a.cfg.Session.PollInterval)
	}

	a.logger.InfoContext(ctx, "watching session")
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeJSON(cmd, state); err != nil {
				return err
			}
		}
	}
}

func printState(cmd *cobra.Command, a *app, state auth.SessionState) error {
	if a.jsonOutput {
		return writeJSON(cmd, state)
	}
	switch {
	case state.Error != "":
		fmt.Fprintln(cmd.ErrOrStderr(), state.Error)
		return errReported
	case state.User != nil:
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s) since %s\n", state.User.Email, state.User.ID, state.User.CreatedAt)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
	}
	return nil
}
