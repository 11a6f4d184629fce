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

package testutil

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func getJSON(t *testing.T, url, token string, v interface{}) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestGistAPIServer_Pagination(t *testing.T) {
	server := NewGistAPIServer(t, 2)
	for _, id := range []string{"a", "b", "c"} {
		server.AddGist("alice", NewGistBuilder(id).Build())
	}

	var page1 []map[string]interface{}
	resp := getJSON(t, server.URL+"/users/alice/gists", "", &page1)
	if len(page1) != 2 {
		t.Fatalf("page 1 has %d items, want 2", len(page1))
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="last"`) {
		t.Fatalf("Link header = %q", link)
	}
	next := link[strings.Index(link, "<")+1 : strings.Index(link, ">")]

	var page2 []map[string]interface{}
	resp = getJSON(t, next, "", &page2)
	if len(page2) != 1 || page2[0]["id"] != "c" {
		t.Errorf("page 2 = %v", page2)
	}
	if resp.Header.Get("Link") != "" {
		t.Errorf("last page has Link header %q", resp.Header.Get("Link"))
	}

	if server.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2", server.RequestCount())
	}
}

func TestGistAPIServer_Comments(t *testing.T) {
	server := NewGistAPIServer(t, 0)
	server.AddGist("alice", NewGistBuilder("a").Build(),
		NewComment(1, "bob", "2021-01-01T00:00:00Z", "hi"))
	server.AddGist("alice", NewGistBuilder("b").Build())

	var comments []map[string]interface{}
	getJSON(t, server.URL+"/gists/a/comments", "", &comments)
	if len(comments) != 1 || comments[0]["body"] != "hi" {
		t.Errorf("comments of a = %v", comments)
	}

	var empty []map[string]interface{}
	getJSON(t, server.URL+"/gists/b/comments", "", &empty)
	if empty == nil || len(empty) != 0 {
		t.Errorf("comments of b = %#v, want empty array", empty)
	}
}

func TestGistAPIServer_Errors(t *testing.T) {
	server := NewGistAPIServer(t, 0)
	server.AddUser("alice")
	server.FailComments("x", http.StatusBadGateway)

	if resp := getJSON(t, server.URL+"/users/nobody/gists", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown user status = %d", resp.StatusCode)
	}
	if resp := getJSON(t, server.URL+"/gists/x/comments", "", nil); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failing comments status = %d", resp.StatusCode)
	}

	var gists []map[string]interface{}
	if resp := getJSON(t, server.URL+"/users/alice/gists", "", &gists); resp.StatusCode != http.StatusOK || len(gists) != 0 {
		t.Errorf("user without gists: status %d, %v", resp.StatusCode, gists)
	}
}

func TestGistAPIServer_Token(t *testing.T) {
	server := NewGistAPIServer(t, 0)
	server.AddUser("alice")
	server.Token = "s3cret"

	if resp := getJSON(t, server.URL+"/users/alice/gists", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status = %d", resp.StatusCode)
	}
	if resp := getJSON(t, server.URL+"/users/alice/gists", "s3cret", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d", resp.StatusCode)
	}

	headers := server.AuthHeaders()
	if len(headers) != 2 || headers[0] != "" || headers[1] != "token s3cret" {
		t.Errorf("AuthHeaders = %q", headers)
	}
}

func TestNewTransientErrorServer(t *testing.T) {
	server, count := NewTransientErrorServer(t, 2, http.StatusServiceUnavailable)

	for i, want := range []int{503, 503, 200} {
		resp := getJSON(t, server.URL, "", nil)
		if resp.StatusCode != want {
			t.Errorf("request %d status = %d, want %d", i+1, resp.StatusCode, want)
		}
	}
	if count.Load() != 3 {
		t.Errorf("count = %d, want 3", count.Load())
	}
}
