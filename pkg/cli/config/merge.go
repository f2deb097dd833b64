package config

import (
	"regexp"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Merge holds directory merge configuration
type Merge struct {
	Collision         string
	SegmentDirPattern string
}

// Flags returns CLI flags for merge configuration
func (c *Merge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "collision",
			Usage:       "What to do when a merged file already exists (overwrite, skip, error)",
			Value:       string(model.CollisionOverwrite),
			Destination: &c.Collision,
			Sources:     cli.EnvVars("EMLGET_COLLISION"),
		},
		&cli.StringFlag{
			Name:        "segment-dir-pattern",
			Usage:       "Regular expression selecting the segment directories to merge, empty to merge every subdirectory",
			Value:       usecase.DefaultSegmentDirPattern.String(),
			Destination: &c.SegmentDirPattern,
			Sources:     cli.EnvVars("EMLGET_SEGMENT_DIR_PATTERN"),
		},
	}
}

// Configure validates the configuration and returns the merger options
func (c *Merge) Configure() ([]usecase.DirectoryMergerOption, error) {
	policy, err := model.ParseCollisionPolicy(c.Collision)
	if err != nil {
		return nil, err
	}

	opts := []usecase.DirectoryMergerOption{
		usecase.WithCollisionPolicy(policy),
	}

	if c.SegmentDirPattern != "" {
		re, err := regexp.Compile(c.SegmentDirPattern)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid segment directory pattern",
				goerr.T(model.ErrTagInvalidArgument),
				goerr.V("pattern", c.SegmentDirPattern),
			)
		}
		opts = append(opts, usecase.WithSegmentDirPattern(re))
	}

	return opts, nil
}
