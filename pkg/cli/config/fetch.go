package config

import "github.com/urfave/cli/v3"

// Fetch holds the output layout configuration of a run
type Fetch struct {
	DestinationDir string
	SegregateDirs  bool
}

// Flags returns CLI flags for fetch configuration
func (c *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "destination_dir",
			Aliases:     []string{"d"},
			Usage:       "The directory in which the resulting EML files or constituency directories will be stored (default: ./<election name>)",
			Destination: &c.DestinationDir,
			Sources:     cli.EnvVars("EMLGET_DESTINATION_DIR"),
		},
		&cli.BoolFlag{
			Name:        "segregate_dirs",
			Aliases:     []string{"s"},
			Usage:       `If set, the "EML_bestanden_deel_n" subdirectories will not be merged`,
			Destination: &c.SegregateDirs,
			Sources:     cli.EnvVars("EMLGET_SEGREGATE_DIRS"),
		},
	}
}
