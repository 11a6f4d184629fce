// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil provides common test helpers for gist-comments
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// GistAPIServer emulates the gist endpoints of the GitHub REST API:
//
//	GET /users/{username}/gists
//	GET /gists/{id}/comments
//
// Collections are split into pages of PageSize items and linked with a
// Link header carrying rel="next" and rel="last" entries.
type GistAPIServer struct {
	*httptest.Server

	// PageSize is the number of items per page. Zero means 30, the API default.
	PageSize int

	// Token, when set, is required as "Authorization: token <Token>" on every request.
	Token string

	mu       sync.Mutex
	gists    map[string][]map[string]interface{}
	comments map[string][]map[string]interface{}
	failures map[string]int
	auth     []string

	requestCount atomic.Int32
}

// NewGistAPIServer starts an empty gist API server that is closed on test cleanup.
func NewGistAPIServer(t *testing.T, pageSize int) *GistAPIServer {
	t.Helper()

	s := &GistAPIServer{
		PageSize: pageSize,
		gists:    make(map[string][]map[string]interface{}),
		comments: make(map[string][]map[string]interface{}),
		failures: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}/gists", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		items, ok := s.gists[r.PathValue("username")]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		s.servePage(w, r, items)
	})
	mux.HandleFunc("GET /gists/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		items := s.comments[id]
		fail := s.failures[id]
		s.mu.Unlock()
		if fail != 0 {
			writeError(w, fail, http.StatusText(fail))
			return
		}
		s.servePage(w, r, items)
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requestCount.Add(1)

		s.mu.Lock()
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()

		if s.Token != "" && r.Header.Get("Authorization") != "token "+s.Token {
			writeError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// AddGist registers a gist for username together with its comments.
func (s *GistAPIServer) AddGist(username string, gist map[string]interface{}, comments ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gists[username] = append(s.gists[username], gist)
	id, _ := gist["id"].(string)
	if _, ok := s.comments[id]; !ok {
		s.comments[id] = []map[string]interface{}{}
	}
	s.comments[id] = append(s.comments[id], comments...)
}

// AddUser registers a user without gists.
func (s *GistAPIServer) AddUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gists[username]; !ok {
		s.gists[username] = []map[string]interface{}{}
	}
}

// FailComments makes the comments endpoint of gistID answer with status.
func (s *GistAPIServer) FailComments(gistID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[gistID] = status
}

// RequestCount returns the number of requests served.
func (s *GistAPIServer) RequestCount() int {
	return int(s.requestCount.Load())
}

// AuthHeaders returns the Authorization header of every request, in arrival order.
func (s *GistAPIServer) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *GistAPIServer) servePage(w http.ResponseWriter, r *http.Request, items []map[string]interface{}) {
	size := s.PageSize
	if size <= 0 {
		size = 30
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 {
		size = pp
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	lastPage := (len(items) + size - 1) / size
	if lastPage == 0 {
		lastPage = 1
	}

	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	if page < lastPage {
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`,
			s.pageURL(r, page+1, size), s.pageURL(r, lastPage, size)))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(items[start:end])
}

func (s *GistAPIServer) pageURL(r *http.Request, page, size int) string {
	return fmt.Sprintf("%s%s?per_page=%d&page=%d", s.URL, r.URL.Path, size, page)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest",
	})
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, statusCode, http.StatusText(statusCode))
	}))
	t.Cleanup(server.Close)
	return server
}

// NewTransientErrorServer creates a mock server that fails failCount times
// with errorCode, then answers with an empty JSON array.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)

		if count <= int32(failCount) {
			writeError(w, errorCode, http.StatusText(errorCode))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	return server, &requestCount
}
