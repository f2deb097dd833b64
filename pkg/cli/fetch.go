package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdFetch(cfg *settings) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		logger := ctxlog.From(ctx)

		if c.Args().Len() != 1 {
			return goerr.New("exactly one base_url argument is required",
				goerr.T(model.ErrTagInvalidArgument),
				goerr.V("args", c.Args().Slice()),
			)
		}

		cfg.loaded.Apply(c, &cfg.fetch, &cfg.portal, &cfg.merge)
		logger.Debug("Configuration loaded",
			"fetch", cfg.fetch,
			"portal", cfg.portal,
			"merge", cfg.merge,
		)

		mergeOpts, err := cfg.merge.Configure()
		if err != nil {
			return err
		}

		client := cfg.portal.Configure(os.Stderr)
		fetchUC := usecase.NewFetch(
			usecase.NewSegmentDownloader(client, usecase.WithMaxSegments(cfg.portal.MaxSegments)),
			usecase.NewArchiveExpander(),
			usecase.NewDirectoryMerger(mergeOpts...),
		)

		report, err := fetchUC.Run(ctx, &model.FetchRequest{
			BaseURL:        c.Args().First(),
			DestinationDir: cfg.fetch.DestinationDir,
			SegregateDirs:  cfg.fetch.SegregateDirs,
		})
		if err != nil {
			return err
		}

		printRunReport(c.Root().Writer, report)
		return nil
	}
}
