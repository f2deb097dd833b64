package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// MoveOutcome describes what MoveFile did
type MoveOutcome int

const (
	Moved MoveOutcome = iota
	Overwritten
	Skipped
)

// EnsureDir creates dir (and parents) when missing. An existing directory is
// accepted; an existing non-directory is an error.
func EnsureDir(dir string) (created bool, err error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, goerr.New("path exists and is not a directory",
				goerr.T(model.ErrTagNotDirectory),
				goerr.V("path", dir),
			)
		}
		return false, nil

	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, goerr.Wrap(err, "failed to create directory", goerr.V("path", dir))
		}
		return true, nil

	default:
		return false, goerr.Wrap(err, "failed to stat directory", goerr.V("path", dir))
	}
}

// MoveFile moves the regular file src to dst, resolving an existing dst
// according to policy.
func MoveFile(src, dst string, policy model.CollisionPolicy) (MoveOutcome, error) {
	outcome := Moved

	info, err := os.Lstat(dst)
	switch {
	case err == nil:
		if info.IsDir() {
			return 0, goerr.New("destination is a directory",
				goerr.T(model.ErrTagCollision),
				goerr.V("src", src),
				goerr.V("dst", dst),
			)
		}
		switch policy {
		case model.CollisionSkip:
			return Skipped, nil
		case model.CollisionError:
			return 0, goerr.New("destination file already exists",
				goerr.T(model.ErrTagCollision),
				goerr.V("src", src),
				goerr.V("dst", dst),
			)
		}
		outcome = Overwritten

	case !errors.Is(err, fs.ErrNotExist):
		return 0, goerr.Wrap(err, "failed to stat destination", goerr.V("dst", dst))
	}

	if err := os.Rename(src, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return 0, goerr.Wrap(err, "failed to move file", goerr.V("src", src), goerr.V("dst", dst))
		}
		if err := moveAcrossDevices(src, dst); err != nil {
			return 0, err
		}
	}

	return outcome, nil
}

// moveAcrossDevices copies src to dst then removes src
func moveAcrossDevices(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return goerr.Wrap(err, "failed to stat source", goerr.V("src", src))
	}
	if err := CopyFileMode(src, dst, info.Mode().Perm()); err != nil {
		return goerr.Wrap(err, "failed to copy file", goerr.V("src", src), goerr.V("dst", dst))
	}
	if err := os.Remove(src); err != nil {
		return goerr.Wrap(err, "failed to remove source after copy", goerr.V("src", src))
	}
	return nil
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// WithinDir reports whether target resolves inside dir
func WithinDir(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}
