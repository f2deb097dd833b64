package portal

import (
	"context"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/schollz/progressbar/v3"
)

// config holds internal client configuration
type config struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	authToken  string
	progress   io.Writer
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithTimeout sets a per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(cfg *config) {
		cfg.userAgent = ua
	}
}

// WithAuthToken sends the token as a Bearer Authorization header
func WithAuthToken(token string) Option {
	return func(cfg *config) {
		cfg.authToken = token
	}
}

// WithProgress draws a download progress bar on w
func WithProgress(w io.Writer) Option {
	return func(cfg *config) {
		cfg.progress = w
	}
}

type client struct {
	cfg *config
}

// NewClient creates a new portal client
func NewClient(opts ...Option) interfaces.PortalClient {
	cfg := &config{
		userAgent: types.AppName + "/" + types.Version,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}

	return &client{cfg: cfg}
}

func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}

	if c.cfg.userAgent != "" {
		req.Header.Set("User-Agent", c.cfg.userAgent)
	}
	if c.cfg.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.authToken)
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("url", url))
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Exists issues a GET for url and reports whether it succeeded. The portal
// does not answer HEAD reliably, so the full body is requested and discarded.
func (c *client) Exists(ctx context.Context, url string) (bool, error) {
	logger := ctxlog.From(ctx)

	resp, err := c.get(ctx, url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !isSuccess(resp.StatusCode) {
		logger.Info("URL returned error status",
			"url", url,
			"status", resp.StatusCode,
		)
		return false, nil
	}

	logger.Info("URL exists", "url", url)
	return true, nil
}

// Download streams the body of url into w
func (c *client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return 0, goerr.New("unexpected status code",
			goerr.T(model.ErrTagHTTPStatus),
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}

	dst := w
	if c.cfg.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(c.cfg.progress),
			progressbar.OptionSetDescription(path.Base(resp.Request.URL.Path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Close() }()
		dst = io.MultiWriter(w, bar)
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, goerr.Wrap(err, "failed to read response body",
			goerr.V("url", url),
			goerr.V("bytes", n),
		)
	}

	return n, nil
}
