// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Command gen-schema renders the painlog config file schema. With --check it
// only reports whether the committed copy is stale, for CI.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/painlog/painlog/internal/config"
)

const defaultOut = "schemas/config.schema.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gen-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("gen-schema", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	out := flags.StringP("output", "o", defaultOut, "where to write the schema")
	check := flags.Bool("check", false, "fail if the file differs instead of writing it")
	if err := flags.Parse(args); err != nil {
		return oops.Code("SCHEMA_USAGE").Wrap(err)
	}

	schema, err := config.Schema()
	if err != nil {
		return err
	}
	schema = append(schema, '\n')

	current, err := os.ReadFile(*out)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("SCHEMA_READ_FAILED").With("path", *out).Wrap(err)
	}
	if bytes.Equal(current, schema) {
		fmt.Fprintf(stdout, "%s is up to date\n", *out)
		return nil
	}
	if *check {
		return oops.Code("SCHEMA_STALE").With("path", *out).
			Errorf("%s is out of date; run gen-schema", *out)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o750); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", *out).Wrap(err)
	}
	if err := os.WriteFile(*out, schema, 0o600); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", *out).Wrap(err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return nil
}
