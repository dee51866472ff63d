package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alasharulary/alash/internal/platform/config"
	"github.com/alasharulary/alash/internal/platform/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	profile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "alash",
		Short: "Alash Arulary: profiles, birthplaces and quotes of Kazakh trailblazers",
		Long: `alash serves a bilingual (Kazakh/English) guide to the women of the
Alash era: a searchable dashboard, a birthplace map and rotating quotes.

Run without a subcommand to start the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", defaultProfile(),
		"config profile, read from configs/{profile}.yaml")

	root.AddCommand(newServeCmd(opts), newContentCmd(opts))

	return root
}

// defaultProfile follows APP_ENVIRONMENT and falls back to local.
func defaultProfile() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}
	return "local"
}

// loadConfig loads and validates configuration for profile.
func loadConfig(profile string) (*config.Config, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newLogger builds the process logger from configuration and installs it as
// the default, which request-scoped loggers derive from.
func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	return logger
}
