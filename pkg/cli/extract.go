package cli

import (
	"context"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdExtract() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Extract and delete the archives already present in a directory",
		ArgsUsage: "<dir>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one directory argument is required",
					goerr.T(model.ErrTagInvalidArgument),
				)
			}
			dir := c.Args().First()

			expander := usecase.NewArchiveExpander()
			extracted, err := expander.ExtractAll(ctx, dir)
			if err != nil {
				return goerr.Wrap(err, "failed to extract archives", goerr.V("dir", dir))
			}

			deleted, err := expander.DeleteZips(ctx, dir)
			if err != nil {
				return goerr.Wrap(err, "failed to delete archives", goerr.V("dir", dir))
			}

			printRunReport(c.Root().Writer, &model.RunReport{
				Extract: extracted,
				Deleted: deleted,
			})
			return nil
		},
	}
}
