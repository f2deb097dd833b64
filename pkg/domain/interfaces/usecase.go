package interfaces

import (
	"context"

	"github.com/m-mizutani/emlget/pkg/domain/model"
)

// SegmentDownloader discovers and downloads every segment of a dataset
type SegmentDownloader interface {
	// DownloadSegments probes and downloads segments 1..k into destDir
	DownloadSegments(ctx context.Context, baseURL, destDir string) (*model.DownloadResult, error)
}

// ArchiveExpander extracts and removes the archives of a directory
type ArchiveExpander interface {
	// ExtractAll extracts every archive found directly in dir into dir
	ExtractAll(ctx context.Context, dir string) (*model.ExtractResult, error)

	// DeleteZips removes every archive found directly in dir
	DeleteZips(ctx context.Context, dir string) ([]string, error)
}

// DirectoryMerger collapses per-segment directories into one tree
type DirectoryMerger interface {
	// Merge consolidates segment directories of mainDir into mainDir
	Merge(ctx context.Context, mainDir string) (*model.MergeReport, error)
}

// FetchUseCase runs the whole download, extract and merge sequence
type FetchUseCase interface {
	// Run executes every stage for the request
	Run(ctx context.Context, req *model.FetchRequest) (*model.RunReport, error)
}
