package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/problemspark/internal/config"
	"github.com/sakif/problemspark/internal/server"
)

func (a *app) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	flags := cmd.Flags()
	flags.Int("port", 8080, "Port to listen on")
	flags.String("store", config.StoreSQLite, "Storage backend (sqlite or memory)")
	flags.Bool("seed", false, "Load the sample problems into a memory store at startup")
	a.v.BindPFlag(config.KeyPort, flags.Lookup("port"))
	a.v.BindPFlag(config.KeyStore, flags.Lookup("store"))
	a.v.BindPFlag(config.KeySeed, flags.Lookup("seed"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	if cfg.GeneratedSecret {
		logger.Warn("jwt_secret not set, using a random one; sessions end when the process exits")
	}
	if cfg.Seed && cfg.Store != config.StoreMemory {
		logger.Warn("--seed only applies to the memory store; use the seed command for sqlite")
	}

	// Ctrl+C and SIGTERM cancel ctx, which makes Start shut down gracefully.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Start(ctx)
}
