// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/painlog/painlog/internal/config"
	"github.com/painlog/painlog/internal/xdg"
)

const configTemplate = `# PainLog configuration. Every key is optional.
# yaml-language-server: $schema=` + config.SchemaID + `
provider: local        # local or firebase
locale: ja             # ja or en
log:
  format: text         # json or text
  level: warn
session:
  poll_interval: 2s
database:
  connect_attempts: 5  # url comes from DATABASE_URL
firebase:
  timeout: 10s         # api_key comes from PAINLOG_FIREBASE_API_KEY
`

// NewConfigCmd creates the config command. Its subcommands other than show
// work without a valid configuration.
func NewConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate configuration",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	var out string
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", out).Wrap(err)
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", out).Wrap(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", out)
			return nil
		},
	}
	schema.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	cmd.AddCommand(schema)

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a configuration file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Code("CONFIG_READ_FAILED").With("path", args[0]).Wrap(err)
			}
			if err := config.ValidateYAML(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configFile
			if path == "" {
				p, err := a.deps.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return oops.Code("CONFIG_EXISTS").With("path", path).Errorf("%s already exists; pass --force to overwrite", path)
			}
			if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
				return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			shown := *a.cfg
			if shown.Database.URL != "" {
				shown.Database.URL = "[REDACTED]"
			}
			if shown.Firebase.APIKey != "" {
				shown.Firebase.APIKey = "[REDACTED]"
			}
			return writeJSON(cmd, shown)
		},
	})

	return cmd
}
