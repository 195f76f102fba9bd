package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sakif/problemspark/internal/config"
)

// app carries the state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:          "problemspark",
		Short:        "ProblemSpark server",
		Long:         "ProblemSpark collects real-world problems worth solving and lets people vote and comment on them.",
		Example:      fmt.Sprintf("  %s serve --store memory --seed", os.Args[0]),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(a.v, a.configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.String("db", "data/problemspark.db", "SQLite database path")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	a.v.BindPFlag(config.KeyDBPath, flags.Lookup("db"))
	a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(a.newServeCommand())
	root.AddCommand(a.newSeedCommand())

	return root
}

// newLogger builds the process logger and makes it the slog default, so
// the few places that log without an injected logger agree on format.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
