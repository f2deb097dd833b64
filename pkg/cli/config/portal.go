package config

import (
	"io"
	"os"
	"time"

	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/infra/portal"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Portal holds open-data portal client configuration
type Portal struct {
	Timeout     time.Duration
	UserAgent   string
	AuthToken   string `masq:"secret"`
	MaxSegments int
	NoProgress  bool
}

// Flags returns CLI flags for portal configuration
func (c *Portal) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of a single HTTP request, 0 for none",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("EMLGET_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header sent to the portal (default: emlget/<version>)",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("EMLGET_USER_AGENT"),
		},
		&cli.StringFlag{
			Name:        "auth-token",
			Usage:       "Bearer token for portals or mirrors that require authentication",
			Destination: &c.AuthToken,
			Sources:     cli.EnvVars("EMLGET_AUTH_TOKEN"),
		},
		&cli.IntFlag{
			Name:        "max-segments",
			Usage:       "Highest segment number to download before giving up",
			Value:       usecase.DefaultMaxSegments,
			Destination: &c.MaxSegments,
			Sources:     cli.EnvVars("EMLGET_MAX_SEGMENTS"),
		},
		&cli.BoolFlag{
			Name:        "no-progress",
			Usage:       "Do not draw download progress bars",
			Destination: &c.NoProgress,
			Sources:     cli.EnvVars("EMLGET_NO_PROGRESS"),
		},
	}
}

// Configure creates a portal client. Progress bars are drawn on progress
// when it is a terminal.
func (c *Portal) Configure(progress io.Writer) interfaces.PortalClient {
	opts := []portal.Option{
		portal.WithTimeout(c.Timeout),
	}
	if c.UserAgent != "" {
		opts = append(opts, portal.WithUserAgent(c.UserAgent))
	}
	if c.AuthToken != "" {
		opts = append(opts, portal.WithAuthToken(c.AuthToken))
	}
	if progress == nil {
		progress = os.Stderr
	}
	if !c.NoProgress && isTerminal(progress) {
		opts = append(opts, portal.WithProgress(progress))
	}

	return portal.NewClient(opts...)
}
