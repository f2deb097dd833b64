package usecase

import (
	"context"
	"iter"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/utils/fsutil"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxSegments bounds discovery against a portal that never reports a
// missing segment
const DefaultMaxSegments = 1000

const partialSuffix = ".part"

type segmentDownloader struct {
	client      interfaces.PortalClient
	maxSegments int
}

// SegmentDownloaderOption configures a SegmentDownloader
type SegmentDownloaderOption func(*segmentDownloader)

// WithMaxSegments sets the highest segment index that may be probed
func WithMaxSegments(n int) SegmentDownloaderOption {
	return func(uc *segmentDownloader) {
		uc.maxSegments = n
	}
}

// NewSegmentDownloader creates a new instance of SegmentDownloader
func NewSegmentDownloader(client interfaces.PortalClient, opts ...SegmentDownloaderOption) interfaces.SegmentDownloader {
	uc := &segmentDownloader{
		client:      client,
		maxSegments: DefaultMaxSegments,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.maxSegments <= 0 {
		uc.maxSegments = DefaultMaxSegments
	}
	return uc
}

// DownloadSegments discovers the segments of baseURL and downloads them into
// destDir. An empty destDir resolves to <cwd>/<dataset name>.
func (uc *segmentDownloader) DownloadSegments(ctx context.Context, baseURL, destDir string) (*model.DownloadResult, error) {
	logger := ctxlog.From(ctx)

	dataset, err := model.NewDataset(baseURL)
	if err != nil {
		return nil, err
	}

	if destDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get current directory")
		}
		destDir = filepath.Join(cwd, dataset.Name)
	}

	created, err := fsutil.EnsureDir(destDir)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("Created destination directory", "dir", destDir)
	} else {
		logger.Info("Destination directory already exists", "dir", destDir)
	}

	result := &model.DownloadResult{
		Dataset:        dataset,
		DestinationDir: destDir,
	}

	for seg, err := range uc.discover(ctx, dataset, &result.Probed) {
		if err != nil {
			return nil, err
		}

		seg.Path = filepath.Join(destDir, dataset.SegmentFileName(seg.Index))
		logger.Info("Downloading segment",
			"index", seg.Index,
			"url", seg.URL,
			"path", seg.Path,
		)

		size, err := uc.downloadFile(ctx, seg.URL, seg.Path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to download segment",
				goerr.V("index", seg.Index),
				goerr.V("url", seg.URL),
			)
		}
		seg.Size = size
		result.Segments = append(result.Segments, seg)
	}

	logger.Info("Finished downloading segments",
		"dataset", dataset.Name,
		"segments", len(result.Segments),
		"probed", result.Probed,
		"total_bytes", result.TotalSize(),
	)

	return result, nil
}

// discover lazily yields every existing segment in index order. It stops at
// the first index the portal reports missing. A segment present beyond the
// maximum index yields a segment_limit error. probed counts issued probes.
func (uc *segmentDownloader) discover(ctx context.Context, dataset *model.Dataset, probed *int) iter.Seq2[*model.Segment, error] {
	return func(yield func(*model.Segment, error) bool) {
		for n := 1; ; n++ {
			url := dataset.SegmentURL(n)
			*probed++
			ok, err := uc.client.Exists(ctx, url)
			if err != nil {
				yield(nil, goerr.Wrap(err, "failed to probe segment", goerr.V("url", url)))
				return
			}
			if !ok {
				return
			}

			if n > uc.maxSegments {
				yield(nil, goerr.New("segment limit exceeded",
					goerr.T(model.ErrTagSegmentLimit),
					goerr.V("max_segments", uc.maxSegments),
					goerr.V("base_url", dataset.BaseURL),
				))
				return
			}

			if !yield(&model.Segment{Index: n, URL: url}, nil) {
				return
			}
		}
	}
}

// downloadFile writes url to path through a partial file so that an
// interrupted download never leaves a file with the archive extension.
func (uc *segmentDownloader) downloadFile(ctx context.Context, url, path string) (int64, error) {
	partPath := path + partialSuffix

	f, err := os.OpenFile(partPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create file", goerr.V("path", partPath))
	}

	size, err := uc.client.Download(ctx, url, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = goerr.Wrap(cerr, "failed to close file", goerr.V("path", partPath))
	}
	if err != nil {
		_ = os.Remove(partPath)
		return 0, err
	}

	if err := os.Rename(partPath, path); err != nil {
		_ = os.Remove(partPath)
		return 0, goerr.Wrap(err, "failed to finalize file", goerr.V("path", path))
	}

	return size, nil
}
