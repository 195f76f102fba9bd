package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/problemspark/internal/config"
	"github.com/sakif/problemspark/internal/seed"
	"github.com/sakif/problemspark/internal/server"
)

func (a *app) newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Loads sample problems into the SQLite database",
		Long: "Loads sample problems and their comment threads into the SQLite database.\n" +
			"Without --file the built-in data set is used. Seeding an already seeded\n" +
			"database does nothing.",
		Example: fmt.Sprintf("  %s seed --db data/problemspark.db --file my-problems.yaml", os.Args[0]),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSeed(cmd, file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML data set to load instead of the built-in one")
	return cmd
}

// runSeed skips config.Load: seeding needs a database path and nothing
// else, in particular no JWT secret.
func (a *app) runSeed(cmd *cobra.Command, file string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString(config.KeyLogLevel))); err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString(config.KeyLogLevel))
	}
	logger := newLogger(level)

	data, err := loadSeedData(file)
	if err != nil {
		return err
	}

	cfg := config.Config{
		Store:  config.StoreSQLite,
		DBPath: a.v.GetString(config.KeyDBPath),
	}
	store, err := server.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := seed.Apply(cmd.Context(), store, data)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		logger.Info("database already seeded, nothing to do", slog.String("db", cfg.DBPath))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("database seeded",
		slog.String("db", cfg.DBPath),
		slog.Int("problems", sum.Problems),
		slog.Int("comments", sum.Comments),
	)
	return nil
}

func loadSeedData(file string) (*seed.Data, error) {
	if file == "" {
		return seed.Default()
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}
