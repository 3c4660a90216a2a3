// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCheckPasswordCmd creates the check-password subcommand.
func NewCheckPasswordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-password",
		Short: "Check a password against the password policy",
		Long: `Read a password from stdin and check it against the configured policy.
Prints the first violated rule and exits 1, or prints "ok".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			result := cfg.Policy().Validate(password)
			if !result.Valid() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Reason, result.Message)
				return &exitError{code: 1}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
