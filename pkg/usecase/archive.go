package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/emlget/pkg/domain/interfaces"
	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/utils/fsutil"
	"github.com/m-mizutani/goerr/v2"
)

type archiveExpander struct{}

// NewArchiveExpander creates a new instance of ArchiveExpander
func NewArchiveExpander() interfaces.ArchiveExpander {
	return &archiveExpander{}
}

// listArchives returns the names of archives directly inside dir, selected
// by exact extension match
func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", dir))
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == model.ArchiveExt {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ExtractAll extracts every archive in dir into dir. Processing stops at the
// first failing archive; content extracted so far is kept.
func (uc *archiveExpander) ExtractAll(ctx context.Context, dir string) (*model.ExtractResult, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Extracting archives", "dir", dir)

	names, err := listArchives(dir)
	if err != nil {
		return nil, err
	}

	result := &model.ExtractResult{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		logger.Info("Extracting archive", "path", path)

		files, size, err := uc.extractZip(ctx, path, dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extract archive", goerr.V("path", path))
		}

		result.Archives = append(result.Archives, name)
		result.Files += files
		result.Size += size
	}

	logger.Info("Extracted archives",
		"dir", dir,
		"archives", len(result.Archives),
		"file_count", result.Files,
		"total_size_bytes", result.Size,
	)

	return result, nil
}

// DeleteZips removes every archive in dir
func (uc *archiveExpander) DeleteZips(ctx context.Context, dir string) ([]string, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Deleting archives", "dir", dir)

	names, err := listArchives(dir)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return deleted, goerr.Wrap(err, "failed to delete archive", goerr.V("path", path))
		}
		logger.Debug("Deleted archive", "path", path)
		deleted = append(deleted, name)
	}

	return deleted, nil
}

// extractZip extracts the archive at path into destDir
func (uc *archiveExpander) extractZip(ctx context.Context, path, destDir string) (int, int64, error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to open zip")
	}
	defer zipReader.Close()

	var files int
	var totalSize int64

	for _, file := range zipReader.File {
		if err := ctx.Err(); err != nil {
			return files, totalSize, goerr.Wrap(err, "extraction interrupted")
		}

		isFile, err := extractFile(file, destDir)
		if err != nil {
			return files, totalSize, goerr.Wrap(err, "failed to extract file", goerr.V("name", file.Name))
		}
		if isFile {
			files++
			totalSize += int64(file.UncompressedSize64)
		}
	}

	return files, totalSize, nil
}

// extractFile extracts a single entry and reports whether it was a file
func extractFile(file *zip.File, destDir string) (bool, error) {
	destPath := filepath.Join(destDir, filepath.FromSlash(file.Name))
	if !fsutil.WithinDir(destDir, destPath) {
		return false, goerr.New("entry escapes destination directory",
			goerr.T(model.ErrTagUnsafePath),
			goerr.V("name", file.Name),
			goerr.V("dest", destPath),
		)
	}
	if filepath.Clean(destPath) == filepath.Clean(destDir) {
		return false, nil
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return false, goerr.Wrap(err, "failed to create directory", goerr.V("path", destPath))
		}
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return false, goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(destPath)))
	}

	rc, err := file.Open()
	if err != nil {
		return false, goerr.Wrap(err, "failed to open entry")
	}
	defer rc.Close()

	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return false, goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return false, goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}

	if err := destFile.Close(); err != nil {
		return false, goerr.Wrap(err, "failed to close destination file", goerr.V("path", destPath))
	}

	return true, nil
}
