// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <username>",
		Short: "Register a credential and print its hash",
		Long: `Read a password from stdin, validate the username and password, and print
the argon2id credential hash to store with the account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			result, err := a.service.Register(cmd.Context(), args[0], password)
			if err != nil {
				return err //nolint:wrapcheck // auth errors carry their own codes
			}
			if !result.Success {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", result.Reason, result.Message)
				return &exitError{code: 1}
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.CredentialHash)
			return nil
		},
	}
}
