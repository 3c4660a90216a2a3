// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Verify exit codes.
const (
	exitMismatch     = 1
	exitMalformedArg = 2
)

// NewVerifyCmd creates the verify subcommand.
func NewVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <hash>",
		Short: "Verify a password against a stored credential hash",
		Long: `Read a password from stdin and check it against hash.
Prints "match" or "no match"; exits 1 on mismatch and 2 on a malformed hash.`,
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

			hash := args[0]
			match, err := a.service.VerifyCredential(cmd.Context(), password, hash)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return &exitError{code: exitMalformedArg}
			}
			if !match {
				fmt.Fprintln(cmd.OutOrStdout(), "no match")
				return &exitError{code: exitMismatch}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "match")
			if a.service.NeedsRehash(hash) {
				fmt.Fprintln(cmd.ErrOrStderr(), "hash uses outdated parameters; rehash on next login")
			}
			return nil
		},
	}
}
