package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/server"
	"github.com/desertthunder/moodmix/internal/shared"
)

// gatewayOptions builds the gateway configuration from config and command flags.
func (r *Runner) gatewayOptions(cmd *cli.Command) server.Options {
	opts := server.Options{
		Engine:      r.engine,
		Auth:        r.auth,
		FrontendURL: r.config.Server.FrontendURL,
		StaticDir:   r.config.Server.StaticDir,
		Logger:      shared.WithLogger(r.logger, "component", "gateway"),
	}
	if v := cmd.String("frontend-url"); v != "" {
		opts.FrontendURL = v
	}
	if v := cmd.String("static"); v != "" {
		opts.StaticDir = v
	}
	return opts
}

// Serve runs the gateway until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		r.logger.Warn("auth routes disabled", "error", r.config.Validate())
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	opts := r.gatewayOptions(cmd)
	gateway := server.NewGateway(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting gateway", "addr", addr, "frontend", opts.FrontendURL, "static", opts.StaticDir, "auth", opts.Auth != nil)
	return server.Serve(ctx, gateway.Server(addr), r.logger)
}
