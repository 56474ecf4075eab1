package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookloader/bookloader/internal/cataloging"
	"github.com/bookloader/bookloader/internal/config"
	"github.com/bookloader/bookloader/internal/sources"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bookloader",
		Short: "Catalog books by reconciling metadata from several sources",
		Long: `Bookloader looks a book up by ISBN-13 on a retail site, a cataloging site
and two bibliographic APIs, reconciles the conflicting answers into a single
record and maps the subject strings it finds onto a fixed list of categories.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if opts.verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default "+config.DefaultPath+" if present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newLookupCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newClassifyCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// load reads the configuration and wires the cataloging service
func (o *rootOptions) load(ctx context.Context) (*config.Config, *cataloging.Service, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	adapters, err := sources.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sources: %w", err)
	}

	return cfg, cataloging.NewService(cfg, adapters), nil
}
