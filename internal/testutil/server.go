// Package testutil provides a fake content backend and fixtures for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/satinau/seoshell/content"
)

// ContentServer serves an index.json and Markdown files under /blog/,
// mimicking the remote content base.
type ContentServer struct {
	*httptest.Server

	mu          sync.Mutex
	posts       []content.Post
	files       map[string]string
	failures    map[string]int
	indexStatus int
	rawIndex    string
	requests    []string
}

// NewContentServer starts a ContentServer that is closed with the test.
func NewContentServer(t *testing.T, posts []content.Post, files map[string]string) *ContentServer {
	t.Helper()
	cs := &ContentServer{
		posts:    posts,
		files:    files,
		failures: make(map[string]int),
	}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.serve))
	t.Cleanup(cs.Close)
	return cs
}

// Base returns the content base URL, ending in a slash.
func (cs *ContentServer) Base() string {
	return cs.URL + "/blog/"
}

// Fail makes requests for file answer with the given status code.
func (cs *ContentServer) Fail(file string, status int) {
	cs.mu.Lock()
	cs.failures[file] = status
	cs.mu.Unlock()
}

// FailIndex makes index.json answer with the given status code.
func (cs *ContentServer) FailIndex(status int) {
	cs.mu.Lock()
	cs.indexStatus = status
	cs.mu.Unlock()
}

// SetRawIndex serves body verbatim as index.json.
func (cs *ContentServer) SetRawIndex(body string) {
	cs.mu.Lock()
	cs.rawIndex = body
	cs.mu.Unlock()
}

// Requests returns the decoded paths requested so far.
func (cs *ContentServer) Requests() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.requests...)
}

func (cs *ContentServer) serve(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.requests = append(cs.requests, r.URL.Path)

	name, ok := strings.CutPrefix(r.URL.Path, "/blog/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if name == "index.json" {
		if cs.indexStatus != 0 {
			http.Error(w, http.StatusText(cs.indexStatus), cs.indexStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if cs.rawIndex != "" {
			_, _ = w.Write([]byte(cs.rawIndex))
			return
		}
		_ = json.NewEncoder(w).Encode(cs.posts)
		return
	}
	if code, failed := cs.failures[name]; failed {
		http.Error(w, http.StatusText(code), code)
		return
	}
	body, found := cs.files[name]
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
