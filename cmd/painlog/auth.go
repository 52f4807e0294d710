// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/painlog/painlog/internal/auth"
)

type credentialFlags struct {
	email         string
	password      string
	passwordStdin bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
}

// resolvePassword returns the password from the flag or stdin.
func (f *credentialFlags) resolvePassword(in io.Reader) (string, error) {
	if !f.passwordStdin {
		return f.password, nil
	}
	if f.password != "" {
		return "", oops.Code("FLAGS_INVALID").Errorf("--password and --password-stdin are mutually exclusive")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", oops.Code("STDIN_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// withService opens the backend, runs fn with a Service and closes the backend.
func (a *app) withService(ctx context.Context, fn func(*auth.Service) error) error {
	backend, err := a.deps.OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc, err := auth.NewService(backend.Provider, backend.Profiles,
		auth.WithLogger(a.logger),
		auth.WithMessages(a.messages()),
	)
	if err != nil {
		return err
	}
	return fn(svc)
}

func userOf(u auth.User) *auth.User { return &u }

// NewLoginCmd creates the login subcommand.
func NewLoginCmd(a *app) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and load the user profile",
		Long: `Sign in with email and password. The profile is created on first
sign-in when it does not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := f.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				result := svc.Login(cmd.Context(), auth.LoginCredentials{Email: f.email, Password: password})
				return report(cmd, a, result, func(u auth.User) string {
					return fmt.Sprintf("Signed in as %s (%s)", u.Email, u.ID)
				}, userOf)
			})
		},
	}
	f.register(cmd)
	return cmd
}

// NewRegisterCmd creates the register subcommand.
func NewRegisterCmd(a *app) *cobra.Command {
	var (
		f       credentialFlags
		confirm string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and its profile",
		Long: `Create an account with email and password, sign it in and store its
profile. --confirm-password defaults to the password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := f.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("confirm-password") {
				confirm = password
			}
			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				result := svc.Register(cmd.Context(), auth.RegisterCredentials{
					Email:           f.email,
					Password:        password,
					ConfirmPassword: confirm,
				})
				return report(cmd, a, result, func(u auth.User) string {
					return fmt.Sprintf("Registered %s (%s)", u.Email, u.ID)
				}, userOf)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "password confirmation")
	return cmd
}

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				result := svc.Logout(cmd.Context())
				return report(cmd, a, result, func(auth.Unit) string {
					return "Signed out"
				}, func(auth.Unit) *auth.User { return nil })
			})
		},
	}
}
