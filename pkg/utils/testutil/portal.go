package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Portal is a fake open-data portal serving files under /data/
type Portal struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests map[string]int
	headers  []http.Header
}

// NewPortal starts a fake portal serving files keyed by file name. The
// server is closed when the test finishes.
func NewPortal(t *testing.T, files map[string][]byte) *Portal {
	t.Helper()

	p := &Portal{
		files:    files,
		requests: make(map[string]int),
	}

	router := chi.NewRouter()
	router.Get("/data/{file}", p.serveFile)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.NotFound(w, r)
	})

	p.Server = httptest.NewServer(router)
	t.Cleanup(p.Close)
	return p
}

func (p *Portal) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests[r.URL.Path]++
	p.headers = append(p.headers, r.Header.Clone())
}

func (p *Portal) serveFile(w http.ResponseWriter, r *http.Request) {
	p.record(r)

	data, ok := p.files[chi.URLParam(r, "file")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BaseURL returns the dataset base URL for a file prefix, e.g.
// BaseURL("EML_bestanden_TK2021")
func (p *Portal) BaseURL(prefix string) string {
	return p.URL + "/data/" + prefix
}

// Requests returns the number of requests received for a file name
func (p *Portal) Requests(file string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests["/data/"+file]
}

// TotalRequests returns the number of requests received under /data/
func (p *Portal) TotalRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for path, n := range p.requests {
		if strings.HasPrefix(path, "/data/") {
			total += n
		}
	}
	return total
}

// Headers returns the headers of every received request
func (p *Portal) Headers() []http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]http.Header(nil), p.headers...)
}
