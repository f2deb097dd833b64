package interfaces

import (
	"context"
	"io"
)

// PortalClient defines operations against the open-data portal hosting the
// segmented archives
type PortalClient interface {
	// Exists reports whether the resource at url is retrievable (2xx)
	Exists(ctx context.Context, url string) (bool, error)

	// Download streams the resource at url into w and returns the number of bytes written
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}
