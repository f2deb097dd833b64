package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type fetchUseCase struct {
	downloader interfaces.SegmentDownloader
	expander   interfaces.ArchiveExpander
	merger     interfaces.DirectoryMerger
}

// NewFetch creates a new instance of FetchUseCase
func NewFetch(
	downloader interfaces.SegmentDownloader,
	expander interfaces.ArchiveExpander,
	merger interfaces.DirectoryMerger,
) interfaces.FetchUseCase {
	return &fetchUseCase{
		downloader: downloader,
		expander:   expander,
		merger:     merger,
	}
}

// Run downloads every segment, extracts and deletes the archives, then
// merges the extracted segment directories unless SegregateDirs is set.
// Each stage completes before the next starts.
func (uc *fetchUseCase) Run(ctx context.Context, req *model.FetchRequest) (*model.RunReport, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Fetching dataset",
		"base_url", req.BaseURL,
		"destination_dir", req.DestinationDir,
		"segregate_dirs", req.SegregateDirs,
	)

	download, err := uc.downloader.DownloadSegments(ctx, req.BaseURL, req.DestinationDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download segments", goerr.V("base_url", req.BaseURL))
	}
	dir := download.DestinationDir
	report := &model.RunReport{Download: download}

	extract, err := uc.expander.ExtractAll(ctx, dir)
	if err != nil {
		return report, goerr.Wrap(err, "failed to extract archives", goerr.V("dir", dir))
	}
	report.Extract = extract

	deleted, err := uc.expander.DeleteZips(ctx, dir)
	report.Deleted = deleted
	if err != nil {
		return report, goerr.Wrap(err, "failed to delete archives", goerr.V("dir", dir))
	}

	if req.SegregateDirs {
		logger.Info("Keeping segment directories separate", "dir", dir)
		return report, nil
	}

	merge, err := uc.merger.Merge(ctx, dir)
	if err != nil {
		return report, goerr.Wrap(err, "failed to merge segment directories", goerr.V("dir", dir))
	}
	report.Merge = merge

	return report, nil
}
