package config

import (
	"os"
	"time"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File is the optional TOML configuration file. Values apply only to flags
// that were not given on the command line or through the environment.
type File struct {
	DestinationDir string      `toml:"destination_dir"`
	SegregateDirs  *bool       `toml:"segregate_dirs"`
	Portal         FilePortal  `toml:"portal"`
	Merge          FileMerge   `toml:"merge"`
	Logging        FileLogging `toml:"logging"`
}

// FilePortal is the [portal] table
type FilePortal struct {
	Timeout     string `toml:"timeout"`
	UserAgent   string `toml:"user_agent"`
	AuthToken   string `toml:"auth_token" masq:"secret"`
	MaxSegments int    `toml:"max_segments"`
}

// FileMerge is the [merge] table
type FileMerge struct {
	Collision         string  `toml:"collision"`
	SegmentDirPattern *string `toml:"segment_dir_pattern"`
}

// FileLogging is the [logging] table
type FileLogging struct {
	Level string `toml:"level"`
	JSON  *bool  `toml:"json"`
}

// ConfigFile holds the path of the configuration file
type ConfigFile struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *ConfigFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("EMLGET_CONFIG"),
		},
	}
}

// Load reads the configuration file. It returns nil when no path is set.
func (c *ConfigFile) Load() (*File, error) {
	if c.Path == "" {
		return nil, nil
	}
	return LoadFile(c.Path)
}

// LoadFile reads and decodes a TOML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.T(model.ErrTagInvalidArgument),
			goerr.V("path", path),
		)
	}

	if file.Portal.Timeout != "" {
		if _, err := time.ParseDuration(file.Portal.Timeout); err != nil {
			return nil, goerr.Wrap(err, "invalid portal timeout",
				goerr.T(model.ErrTagInvalidArgument),
				goerr.V("timeout", file.Portal.Timeout),
			)
		}
	}

	return &file, nil
}

// flagSetter reports whether a flag was given explicitly
type flagSetter interface {
	IsSet(name string) bool
}

// ApplyLogger copies logging values into cfg for flags not set explicitly
func (f *File) ApplyLogger(cmd flagSetter, cfg *Logger) {
	if f == nil {
		return
	}
	if f.Logging.Level != "" && !cmd.IsSet("log-level") {
		cfg.Level = f.Logging.Level
	}
	if f.Logging.JSON != nil && !cmd.IsSet("log-json") {
		cfg.JSON = *f.Logging.JSON
	}
}

// Apply copies file values into the configs for flags not set explicitly
func (f *File) Apply(cmd flagSetter, fetch *Fetch, portal *Portal, merge *Merge) {
	if f == nil {
		return
	}

	if fetch != nil {
		if f.DestinationDir != "" && !cmd.IsSet("destination_dir") {
			fetch.DestinationDir = f.DestinationDir
		}
		if f.SegregateDirs != nil && !cmd.IsSet("segregate_dirs") {
			fetch.SegregateDirs = *f.SegregateDirs
		}
	}

	if portal != nil {
		if f.Portal.Timeout != "" && !cmd.IsSet("timeout") {
			// Validated in LoadFile
			portal.Timeout, _ = time.ParseDuration(f.Portal.Timeout)
		}
		if f.Portal.UserAgent != "" && !cmd.IsSet("user-agent") {
			portal.UserAgent = f.Portal.UserAgent
		}
		if f.Portal.AuthToken != "" && !cmd.IsSet("auth-token") {
			portal.AuthToken = f.Portal.AuthToken
		}
		if f.Portal.MaxSegments > 0 && !cmd.IsSet("max-segments") {
			portal.MaxSegments = f.Portal.MaxSegments
		}
	}

	if merge != nil {
		if f.Merge.Collision != "" && !cmd.IsSet("collision") {
			merge.Collision = f.Merge.Collision
		}
		if f.Merge.SegmentDirPattern != nil && !cmd.IsSet("segment-dir-pattern") {
			merge.SegmentDirPattern = *f.Merge.SegmentDirPattern
		}
	}
}
