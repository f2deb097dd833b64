package cli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/cli/config"
	"github.com/m-mizutani/emlget/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// settings collects every configuration shared by the commands
type settings struct {
	logger config.Logger
	file   config.ConfigFile
	fetch  config.Fetch
	portal config.Portal
	merge  config.Merge

	loaded *config.File
}

func (s *settings) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, s.logger.Flags()...)
	flags = append(flags, s.file.Flags()...)
	flags = append(flags, s.fetch.Flags()...)
	flags = append(flags, s.portal.Flags()...)
	flags = append(flags, s.merge.Flags()...)
	return flags
}

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var cfg settings
	var logger *slog.Logger

	app := &cli.Command{
		Name:      types.AppName,
		Usage:     "Instantly download and structure EML files from data.overheid.nl",
		Version:   types.Version,
		ArgsUsage: "<base_url>",
		Flags:     cfg.flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			loaded, err := cfg.file.Load()
			if err != nil {
				return nil, err
			}
			cfg.loaded = loaded
			cfg.loaded.ApplyLogger(c, &cfg.logger)

			logger, err = cfg.logger.Configure()
			if err != nil {
				return nil, err
			}
			logger = logger.With("run_id", uuid.NewString())

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: cmdFetch(&cfg),
		Commands: []*cli.Command{
			cmdExtract(),
			cmdMerge(&cfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
