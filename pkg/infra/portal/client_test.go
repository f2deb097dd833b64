package portal_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/emlget/pkg/domain/model"
	"github.com/m-mizutani/emlget/pkg/infra/portal"
	"github.com/m-mizutani/emlget/pkg/utils/testutil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewPortal(t, map[string][]byte{
		"EML_bestanden_TK2021_deel_1.zip": []byte("zip"),
	})
	client := portal.NewClient()

	t.Run("existing resource", func(t *testing.T) {
		ok, err := client.Exists(ctx, fake.URL+"/data/EML_bestanden_TK2021_deel_1.zip")
		gt.NoError(t, err)
		gt.True(t, ok)
	})

	t.Run("missing resource", func(t *testing.T) {
		ok, err := client.Exists(ctx, fake.URL+"/data/EML_bestanden_TK2021_deel_2.zip")
		gt.NoError(t, err)
		gt.False(t, ok)
	})
}

func TestClient_Exists_UsesGET(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ok, err := portal.NewClient().Exists(context.Background(), server.URL)
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Value(t, methods).Equal([]string{http.MethodGet})
}

func TestClient_Exists_StatusClassification(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "200 OK", status: http.StatusOK, want: true},
		{name: "206 Partial Content", status: http.StatusPartialContent, want: true},
		{name: "403 Forbidden", status: http.StatusForbidden, want: false},
		{name: "404 Not Found", status: http.StatusNotFound, want: false},
		{name: "500 Internal Server Error", status: http.StatusInternalServerError, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			ok, err := portal.NewClient().Exists(context.Background(), server.URL)
			gt.NoError(t, err)
			gt.Value(t, ok).Equal(tc.want)
		})
	}
}

func TestClient_Exists_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := portal.NewClient().Exists(context.Background(), url)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to send request")
}

func TestClient_Download(t *testing.T) {
	ctx := context.Background()
	content := []byte("fake zip content")
	fake := testutil.NewPortal(t, map[string][]byte{
		"EML_bestanden_TK2021_deel_1.zip": content,
	})

	t.Run("writes the body", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := portal.NewClient().Download(ctx, fake.URL+"/data/EML_bestanden_TK2021_deel_1.zip", &buf)
		gt.NoError(t, err)
		gt.Number(t, n).Equal(int64(len(content)))
		gt.Value(t, buf.Bytes()).Equal(content)
	})

	t.Run("draws progress without altering the body", func(t *testing.T) {
		var buf, progress bytes.Buffer
		client := portal.NewClient(portal.WithProgress(&progress))

		n, err := client.Download(ctx, fake.URL+"/data/EML_bestanden_TK2021_deel_1.zip", &buf)
		gt.NoError(t, err)
		gt.Number(t, n).Equal(int64(len(content)))
		gt.Value(t, buf.Bytes()).Equal(content)
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := portal.NewClient().Download(ctx, fake.URL+"/data/missing.zip", &buf)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagHTTPStatus))
		gt.Number(t, buf.Len()).Equal(0)
	})
}

func TestClient_Headers(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewPortal(t, map[string][]byte{"x_deel_1.zip": []byte("x")})

	client := portal.NewClient(
		portal.WithUserAgent("emlget-test/1.0"),
		portal.WithAuthToken("s3cret"),
	)

	_, err := client.Exists(ctx, fake.URL+"/data/x_deel_1.zip")
	gt.NoError(t, err)

	headers := fake.Headers()
	gt.A(t, headers).Length(1)
	gt.Value(t, headers[0].Get("User-Agent")).Equal("emlget-test/1.0")
	gt.Value(t, headers[0].Get("Authorization")).Equal("Bearer s3cret")
}

func TestClient_DefaultHeaders(t *testing.T) {
	fake := testutil.NewPortal(t, map[string][]byte{"x_deel_1.zip": []byte("x")})

	_, err := portal.NewClient().Exists(context.Background(), fake.URL+"/data/x_deel_1.zip")
	gt.NoError(t, err)

	headers := fake.Headers()
	gt.A(t, headers).Length(1)
	gt.True(t, strings.HasPrefix(headers[0].Get("User-Agent"), "emlget/"))
	gt.Value(t, headers[0].Get("Authorization")).Equal("")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := portal.NewClient(portal.WithTimeout(50 * time.Millisecond))
	_, err := client.Exists(context.Background(), server.URL)
	gt.Error(t, err)
}
