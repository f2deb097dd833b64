package cli

import (
	"context"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMerge(cfg *settings) *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Aliases:   []string{"m"},
		Usage:     "Merge the segment directories of a directory fetched with --segregate_dirs",
		ArgsUsage: "<dir>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one directory argument is required",
					goerr.T(model.ErrTagInvalidArgument),
				)
			}
			dir := c.Args().First()

			cfg.loaded.Apply(c, nil, nil, &cfg.merge)
			opts, err := cfg.merge.Configure()
			if err != nil {
				return err
			}

			report, err := usecase.NewDirectoryMerger(opts...).Merge(ctx, dir)
			if err != nil {
				return goerr.Wrap(err, "failed to merge segment directories", goerr.V("dir", dir))
			}

			printRunReport(c.Root().Writer, &model.RunReport{Merge: report})
			return nil
		},
	}
}
