package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/infra/portal"
	"github.com/m-mizutani/emlget/pkg/usecase"
	"github.com/m-mizutani/emlget/pkg/utils/testutil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// MockPortalClient is a mock implementation of PortalClient
type MockPortalClient struct {
	existsFunc   func(ctx context.Context, url string) (bool, error)
	downloadFunc func(ctx context.Context, url string, w io.Writer) (int64, error)
	probes       []string
	downloads    []string
}

func (m *MockPortalClient) Exists(ctx context.Context, url string) (bool, error) {
	m.probes = append(m.probes, url)
	if m.existsFunc != nil {
		return m.existsFunc(ctx, url)
	}
	return false, errors.New("mock not configured")
}

func (m *MockPortalClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	m.downloads = append(m.downloads, url)
	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, url, w)
	}
	n, err := io.WriteString(w, "content of "+url)
	return int64(n), err
}

// newSegmentedPortal returns a mock where segments 1..k exist
func newSegmentedPortal(k int) *MockPortalClient {
	return &MockPortalClient{
		existsFunc: func(ctx context.Context, url string) (bool, error) {
			for i := 1; i <= k; i++ {
				if strings.HasSuffix(url, fmt.Sprintf("_deel_%d.zip", i)) {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

const testBaseURL = "https://example.org/data/EML_bestanden_TK2021"

func TestSegmentDownloader_DownloadSegments(t *testing.T) {
	for _, k := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d existing segments", k), func(t *testing.T) {
			ctx := context.Background()
			destDir := filepath.Join(t.TempDir(), "out")
			mockClient := newSegmentedPortal(k)

			uc := usecase.NewSegmentDownloader(mockClient)
			result, err := uc.DownloadSegments(ctx, testBaseURL, destDir)
			gt.NoError(t, err)

			gt.Number(t, result.Probed).Equal(k + 1)
			gt.A(t, mockClient.probes).Length(k + 1)
			gt.A(t, result.Segments).Length(k)
			gt.Value(t, result.Dataset.Name).Equal("TK2021")
			gt.Value(t, result.DestinationDir).Equal(destDir)

			// The last probe is the negative one
			gt.Value(t, mockClient.probes[k]).Equal(fmt.Sprintf("%s_deel_%d.zip", testBaseURL, k+1))

			entries, err := os.ReadDir(destDir)
			gt.NoError(t, err)
			gt.A(t, entries).Length(k)

			for i, seg := range result.Segments {
				gt.Number(t, seg.Index).Equal(i + 1)
				gt.Value(t, seg.Path).Equal(filepath.Join(destDir, fmt.Sprintf("TK2021_%d.zip", i+1)))

				content, err := os.ReadFile(seg.Path)
				gt.NoError(t, err)
				gt.Value(t, string(content)).Equal("content of " + seg.URL)
				gt.Number(t, seg.Size).Equal(int64(len(content)))
			}
		})
	}
}

func TestSegmentDownloader_DefaultDestination(t *testing.T) {
	ctx := context.Background()
	cwd := t.TempDir()
	t.Chdir(cwd)

	uc := usecase.NewSegmentDownloader(newSegmentedPortal(1))
	result, err := uc.DownloadSegments(ctx, testBaseURL, "")
	gt.NoError(t, err)

	wd, err := os.Getwd()
	gt.NoError(t, err)
	gt.Value(t, result.DestinationDir).Equal(filepath.Join(wd, "TK2021"))

	_, err = os.Stat(filepath.Join(wd, "TK2021", "TK2021_1.zip"))
	gt.NoError(t, err)
}

func TestSegmentDownloader_ExistingDestination(t *testing.T) {
	ctx := context.Background()

	t.Run("existing directory is reused", func(t *testing.T) {
		destDir := t.TempDir()
		testutil.WriteTree(t, destDir, map[string]string{"keep.txt": "keep"})

		uc := usecase.NewSegmentDownloader(newSegmentedPortal(2))
		result, err := uc.DownloadSegments(ctx, testBaseURL, destDir)
		gt.NoError(t, err)
		gt.A(t, result.Segments).Length(2)

		tree := testutil.Tree(t, destDir)
		gt.Value(t, tree["keep.txt"]).Equal("keep")
	})

	t.Run("existing file is rejected", func(t *testing.T) {
		destDir := filepath.Join(t.TempDir(), "file")
		gt.NoError(t, os.WriteFile(destDir, []byte("x"), 0644))

		mockClient := newSegmentedPortal(2)
		uc := usecase.NewSegmentDownloader(mockClient)
		_, err := uc.DownloadSegments(ctx, testBaseURL, destDir)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagNotDirectory))
		gt.A(t, mockClient.probes).Length(0)
	})
}

func TestSegmentDownloader_InvalidBaseURL(t *testing.T) {
	uc := usecase.NewSegmentDownloader(newSegmentedPortal(1))
	_, err := uc.DownloadSegments(context.Background(), "  ", t.TempDir())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagInvalidArgument))
}

func TestSegmentDownloader_SegmentLimit(t *testing.T) {
	ctx := context.Background()
	mockClient := &MockPortalClient{
		existsFunc: func(ctx context.Context, url string) (bool, error) {
			return true, nil
		},
	}

	uc := usecase.NewSegmentDownloader(mockClient, usecase.WithMaxSegments(3))
	_, err := uc.DownloadSegments(ctx, testBaseURL, t.TempDir())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagSegmentLimit))
	gt.A(t, mockClient.probes).Length(4)
	gt.A(t, mockClient.downloads).Length(3)
}

func TestSegmentDownloader_LimitNotHitAtExactMaximum(t *testing.T) {
	uc := usecase.NewSegmentDownloader(newSegmentedPortal(3), usecase.WithMaxSegments(3))
	result, err := uc.DownloadSegments(context.Background(), testBaseURL, t.TempDir())
	gt.NoError(t, err)
	gt.A(t, result.Segments).Length(3)
}

func TestSegmentDownloader_ProbeError(t *testing.T) {
	mockClient := &MockPortalClient{
		existsFunc: func(ctx context.Context, url string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	uc := usecase.NewSegmentDownloader(mockClient)
	_, err := uc.DownloadSegments(context.Background(), testBaseURL, t.TempDir())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to probe segment")
	gt.A(t, mockClient.downloads).Length(0)
}

func TestSegmentDownloader_DownloadErrorLeavesNoArchive(t *testing.T) {
	destDir := t.TempDir()
	mockClient := newSegmentedPortal(2)
	mockClient.downloadFunc = func(ctx context.Context, url string, w io.Writer) (int64, error) {
		if strings.HasSuffix(url, "_deel_2.zip") {
			_, _ = io.WriteString(w, "partial")
			return 7, errors.New("connection reset")
		}
		n, err := io.WriteString(w, "ok")
		return int64(n), err
	}

	uc := usecase.NewSegmentDownloader(mockClient)
	_, err := uc.DownloadSegments(context.Background(), testBaseURL, destDir)
	gt.Error(t, err)

	tree := testutil.Tree(t, destDir)
	gt.Value(t, tree).Equal(map[string]string{"TK2021_1.zip": "ok"})
}

func TestSegmentDownloader_WithPortal(t *testing.T) {
	ctx := context.Background()
	seg1 := testutil.BuildZip(t, map[string]string{"a.xml": "a"})
	seg2 := testutil.BuildZip(t, map[string]string{"b.xml": "b"})

	fake := testutil.NewPortal(t, map[string][]byte{
		"EML_bestanden_GR2022_deel_1.zip": seg1,
		"EML_bestanden_GR2022_deel_2.zip": seg2,
	})

	destDir := t.TempDir()
	uc := usecase.NewSegmentDownloader(portal.NewClient())
	result, err := uc.DownloadSegments(ctx, fake.BaseURL("EML_bestanden_GR2022"), destDir)
	gt.NoError(t, err)
	gt.A(t, result.Segments).Length(2)

	tree := testutil.Tree(t, destDir)
	gt.Value(t, tree["GR2022_1.zip"]).Equal(string(seg1))
	gt.Value(t, tree["GR2022_2.zip"]).Equal(string(seg2))

	// Each existing segment is fetched twice (probe + download), the gap once
	gt.Number(t, fake.Requests("EML_bestanden_GR2022_deel_1.zip")).Equal(2)
	gt.Number(t, fake.Requests("EML_bestanden_GR2022_deel_3.zip")).Equal(1)
	gt.Number(t, fake.Requests("EML_bestanden_GR2022_deel_4.zip")).Equal(0)
}
