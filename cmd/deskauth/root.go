// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/config"
	"github.com/holomush/deskauth/internal/logging"
)

// exitError ends the process with code after the command already reported
// the outcome to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configFile string
}

// NewRootCmd creates the root command for the deskauth CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "deskauth",
		Short: "Local account authentication for desktop applications",
		Long: `deskauth validates password strength, hashes credentials with argon2id,
verifies them, and tracks the single signed-in user of a desktop session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/deskauth/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewCheckPasswordCmd(opts))
	cmd.AddCommand(NewHashCmd(opts))
	cmd.AddCommand(NewVerifyCmd(opts))
	cmd.AddCommand(NewShellCmd(opts))
	cmd.AddCommand(NewConfigCmd(opts))

	return cmd
}

// app is the configured service graph for one command invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *auth.Service
}

// loadConfig resolves the effective configuration for cmd.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	//nolint:wrapcheck // config errors carry their own codes
	return config.Load(opts.configFile, cmd.Flags())
}

// newApp loads configuration and builds the logger and auth service.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(logging.Options{
		Service: "deskauth",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err //nolint:wrapcheck // logging errors carry their own codes
	}

	hasher, err := auth.NewArgon2idHasher(cfg.HasherParams())
	if err != nil {
		return nil, err //nolint:wrapcheck // auth errors carry their own codes
	}

	svc, err := auth.NewAuthServiceWithLogger(cfg.Policy(), hasher, auth.NewSessionStore(), logger)
	if err != nil {
		return nil, err //nolint:wrapcheck // auth errors carry their own codes
	}

	return &app{cfg: cfg, logger: logger, service: svc}, nil
}
