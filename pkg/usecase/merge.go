package usecase

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/utils/fsutil"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultSegmentDirPattern matches directories extracted from segment
// archives, e.g. "EML_bestanden_TK2021_deel_2"
var DefaultSegmentDirPattern = regexp.MustCompile(`_deel_\d+$`)

type directoryMerger struct {
	policy  model.CollisionPolicy
	pattern *regexp.Regexp
}

// DirectoryMergerOption configures a DirectoryMerger
type DirectoryMergerOption func(*directoryMerger)

// WithCollisionPolicy sets how an existing destination file is handled
func WithCollisionPolicy(policy model.CollisionPolicy) DirectoryMergerOption {
	return func(uc *directoryMerger) {
		uc.policy = policy
	}
}

// WithSegmentDirPattern restricts merging to subdirectories whose name
// matches re. A nil pattern merges every immediate subdirectory.
func WithSegmentDirPattern(re *regexp.Regexp) DirectoryMergerOption {
	return func(uc *directoryMerger) {
		uc.pattern = re
	}
}

// NewDirectoryMerger creates a new instance of DirectoryMerger
func NewDirectoryMerger(opts ...DirectoryMergerOption) interfaces.DirectoryMerger {
	uc := &directoryMerger{
		policy: model.CollisionOverwrite,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Merge moves the content of every segment directory of mainDir into mainDir
// and removes the segment directories. Sub-collection directories with the
// same name are combined.
func (uc *directoryMerger) Merge(ctx context.Context, mainDir string) (*model.MergeReport, error) {
	logger := ctxlog.From(ctx)

	segmentDirs, err := uc.segmentDirs(mainDir)
	if err != nil {
		return nil, err
	}

	logger.Info("Found segment directories",
		"dir", mainDir,
		"segment_dirs", segmentDirs,
	)

	report := &model.MergeReport{}
	seen := make(map[string]struct{})

	for _, name := range segmentDirs {
		segDir := filepath.Join(mainDir, name)
		logger.Info("Moving files from segment directory", "segment_dir", segDir)

		entries, err := os.ReadDir(segDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read segment directory", goerr.V("dir", segDir))
		}

		for _, entry := range entries {
			src := filepath.Join(segDir, entry.Name())
			dst := filepath.Join(mainDir, entry.Name())

			switch {
			case entry.IsDir():
				logger.Info("Merging sub-collection",
					"src", src,
					"dst", dst,
				)
				if err := uc.mergeDir(ctx, src, dst, report); err != nil {
					return nil, err
				}
				if _, ok := seen[entry.Name()]; !ok {
					seen[entry.Name()] = struct{}{}
					report.SubCollections = append(report.SubCollections, entry.Name())
				}

			case entry.Type().IsRegular():
				if err := uc.moveFile(ctx, src, dst, report); err != nil {
					return nil, err
				}

			default:
				logger.Warn("Skipping unsupported entry", "path", src, "type", entry.Type().String())
			}
		}

		report.SegmentDirs = append(report.SegmentDirs, name)

		if err := os.Remove(segDir); err != nil {
			logger.Warn("Could not delete segment directory because it is not empty",
				"segment_dir", segDir,
				"error", err,
			)
			report.Warnings = append(report.Warnings, name)
		}
	}

	logger.Info("Merged segment directories",
		"dir", mainDir,
		"segment_dirs", len(report.SegmentDirs),
		"sub_collections", len(report.SubCollections),
		"moved", report.Moved,
		"overwritten", report.Overwritten,
		"skipped", report.Skipped,
		"warnings", len(report.Warnings),
	)

	return report, nil
}

// segmentDirs lists the immediate subdirectories of mainDir that qualify as
// segment directories, in natural order
func (uc *directoryMerger) segmentDirs(mainDir string) ([]string, error) {
	entries, err := os.ReadDir(mainDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read main directory", goerr.V("dir", mainDir))
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if uc.pattern != nil && !uc.pattern.MatchString(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	slices.SortFunc(names, compareNatural)
	return names, nil
}

// mergeDir moves every entry of src into dst, creating dst when absent and
// recursing into nested directories. src is removed once emptied.
func (uc *directoryMerger) mergeDir(ctx context.Context, src, dst string, report *model.MergeReport) error {
	logger := ctxlog.From(ctx)

	if _, err := fsutil.EnsureDir(dst); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return goerr.Wrap(err, "failed to read directory", goerr.V("dir", src))
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := uc.mergeDir(ctx, from, to, report); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := uc.moveFile(ctx, from, to, report); err != nil {
				return err
			}
		default:
			logger.Warn("Skipping unsupported entry", "path", from, "type", entry.Type().String())
		}
	}

	// A directory still holding skipped files stays; its segment directory
	// then reports the warning.
	_ = os.Remove(src)
	return nil
}

func (uc *directoryMerger) moveFile(ctx context.Context, src, dst string, report *model.MergeReport) error {
	logger := ctxlog.From(ctx)

	outcome, err := fsutil.MoveFile(src, dst, uc.policy)
	if err != nil {
		return err
	}

	switch outcome {
	case fsutil.Skipped:
		logger.Info("Skipped existing file", "src", src, "dst", dst)
		report.Skipped++
	case fsutil.Overwritten:
		logger.Debug("Moved file over existing file", "src", src, "dst", dst)
		report.Moved++
		report.Overwritten++
	default:
		logger.Debug("Moved file", "src", src, "dst", dst)
		report.Moved++
	}
	return nil
}

// compareNatural orders names by their trailing number when both share the
// same non-numeric prefix, and lexically otherwise
func compareNatural(a, b string) int {
	pa, na, okA := splitTrailingNumber(a)
	pb, nb, okB := splitTrailingNumber(b)
	if okA && okB && pa == pb && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitTrailingNumber(s string) (string, int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
