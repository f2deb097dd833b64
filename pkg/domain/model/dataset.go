package model

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SegmentSuffix is inserted between the base URL and the segment index
const SegmentSuffix = "_deel_"

// ArchiveExt is the only extension treated as a segment archive
const ArchiveExt = ".zip"

// Dataset identifies one segmented election dataset on the portal
type Dataset struct {
	BaseURL string // URL prefix before "_deel_<n>.zip"
	Name    string // Short name, e.g. "TK2021"
}

// NewDataset derives a Dataset from a base URL. The name is the substring
// after the final "_"; a URL without "_" falls back to its last path element.
func NewDataset(baseURL string) (*Dataset, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, goerr.New("base URL is empty", goerr.T(ErrTagInvalidArgument))
	}

	name := ""
	if idx := strings.LastIndex(base, "_"); idx >= 0 {
		name = base[idx+1:]
	} else if u, err := url.Parse(base); err == nil && u.Path != "" {
		name = path.Base(u.Path)
	}

	if name == "" || name == "." || name == "/" || strings.ContainsAny(name, `/\`) {
		return nil, goerr.New("cannot derive dataset name from base URL",
			goerr.T(ErrTagInvalidArgument),
			goerr.V("base_url", baseURL),
		)
	}

	return &Dataset{
		BaseURL: base,
		Name:    name,
	}, nil
}

// SegmentURL returns the remote URL of the n-th segment (1-based)
func (d *Dataset) SegmentURL(n int) string {
	return fmt.Sprintf("%s%s%d%s", d.BaseURL, SegmentSuffix, n, ArchiveExt)
}

// SegmentFileName returns the local file name of the n-th segment
func (d *Dataset) SegmentFileName(n int) string {
	return fmt.Sprintf("%s_%d%s", d.Name, n, ArchiveExt)
}
