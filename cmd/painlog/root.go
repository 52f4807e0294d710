// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/config"
	"github.com/painlog/painlog/internal/logging"
)

// errReported marks failures whose message was already shown to the user.
var errReported = errors.New("reported")

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	deps       *Deps
	configFile string
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) messages() *auth.Messages {
	return auth.NewMessages(a.cfg.Locale)
}

// NewRootCmd creates the root command. A nil deps uses the defaults.
func NewRootCmd(deps *Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "painlog",
		Short: "PainLog account and session tool",
		Long: `painlog signs users in and out of PainLog, registers accounts,
reports the current session and manages the database schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/painlog/config.yaml)")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	flags.String("provider", config.ProviderLocal, "identity provider (local or firebase)")
	flags.String("locale", "ja", "locale of user-facing messages")
	flags.String("log-format", logging.FormatText, "log format (json or text)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("session-file", "", "session file (default: XDG_STATE_HOME/painlog/session.json)")
	flags.String("database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")

	cmd.AddCommand(NewLoginCmd(a))
	cmd.AddCommand(NewRegisterCmd(a))
	cmd.AddCommand(NewLogoutCmd(a))
	cmd.AddCommand(NewSessionCmd(a))
	cmd.AddCommand(NewMigrateCmd(a))
	cmd.AddCommand(NewConfigCmd(a))

	return cmd
}

// load reads configuration and sets up logging for the running command.
func (a *app) load(cmd *cobra.Command) error {
	path, required := a.configFile, a.configFile != ""
	if path == "" {
		p, err := a.deps.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:     path,
		Required: required,
		Flags:    cmd.Root().PersistentFlags(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(logging.Options{
		Service: "painlog",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	return nil
}
