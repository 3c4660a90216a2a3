// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/host"
	"github.com/holomush/deskauth/internal/observability"
)

// ObservabilityServer is the subset of observability.Server the shell uses.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

const shutdownTimeout = 5 * time.Second

// NewShellCmd creates the shell subcommand.
func NewShellCmd(opts *rootOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Serve auth commands as JSON lines over stdin/stdout",
		Long: `Read one JSON request per line from stdin, for example
  {"id":"1","command":"register","args":{"username":"alice","password":"..."}}
and write one JSON response per line to stdout. Commands: register,
verify_credential, login, logout, whoami. The session lives for the
lifetime of the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts, concurrency)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "maximum requests in flight (1 keeps input order)")

	return cmd
}

func runShell(cmd *cobra.Command, opts *rootOptions, concurrency int) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var ready atomic.Bool
	if a.cfg.MetricsAddr != "" {
		srv := observability.NewServer(a.cfg.MetricsAddr, version, ready.Load,
			auth.RegisterMetrics, host.RegisterMetrics)
		errCh, startErr := srv.Start()
		if startErr != nil {
			return oops.With("metrics_addr", a.cfg.MetricsAddr).Wrapf(startErr, "start observability server")
		}
		defer stopServer(ctx, a, srv)
		go func() {
			for serveErr := range errCh {
				a.logger.Error("observability server failed", "error", serveErr)
			}
		}()
		a.logger.InfoContext(ctx, "metrics enabled", "addr", srv.Addr())
	}

	d := host.NewDispatcher(host.WithLogger(a.logger))
	if err := host.RegisterAuthHandlers(d, a.service); err != nil {
		return err //nolint:wrapcheck // host errors carry their own codes
	}
	ready.Store(true)

	a.logger.InfoContext(ctx, "shell started", "commands", d.Commands(), "concurrency", concurrency)
	err = host.Serve(ctx, d, cmd.InOrStdin(), cmd.OutOrStdout(), concurrency)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("shell interrupted")
		return nil
	}
	a.logger.InfoContext(ctx, "shell stopped")
	return err //nolint:wrapcheck // host errors are already wrapped
}

func stopServer(ctx context.Context, a *app, srv ObservabilityServer) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		a.logger.Warn("error stopping observability server", "error", err)
	}
}
