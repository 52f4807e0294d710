// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/painlog/painlog/internal/auth"
)

type errorOutput struct {
	Kind    auth.Kind `json:"kind"`
	Message string    `json:"message"`
}

type resultOutput struct {
	OK    bool         `json:"ok"`
	User  *auth.User   `json:"user,omitempty"`
	Error *errorOutput `json:"error,omitempty"`
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// report prints a pipeline result. Failures are printed with their localized
// message and return errReported so the exit status is non-zero.
func report[T any](cmd *cobra.Command, a *app, result auth.Result[T], onOK func(T) string, user func(T) *auth.User) error {
	return auth.Match(result,
		func(v T) error {
			if a.jsonOutput {
				return writeJSON(cmd, resultOutput{OK: true, User: user(v)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), onOK(v))
			return nil
		},
		func(e *auth.Error) error {
			if a.jsonOutput {
				if err := writeJSON(cmd, resultOutput{Error: &errorOutput{Kind: e.Kind, Message: e.Message}}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), e.Message)
			}
			return errReported
		},
	)
}
