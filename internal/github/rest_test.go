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

package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/test/testutil"
)

func TestFetchAll_FollowsNextLink(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/page2?cursor=abc>; rel="next"`, server.URL))
			_, _ = w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
		case "abc":
			assert.Equal(t, "/page2", r.URL.Path)
			_, _ = w.Write([]byte(`[{"id":"3"}]`))
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	}))
	defer server.Close()

	client := NewRESTClient(Options{Endpoint: server.URL})
	gists, err := fetchAll[Gist](context.Background(), client, server.URL+"/page1")
	require.NoError(t, err)

	ids := make([]string, len(gists))
	for i, g := range gists {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, 2, client.RequestCount())
}

func TestFetchAll_EmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRESTClient(Options{Endpoint: server.URL})
	comments, err := fetchAll[Comment](context.Background(), client, server.URL+"/gists/x/comments")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestRESTClient_ListGistsAcrossPages(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 2)
	for i := 1; i <= 5; i++ {
		api.AddGist("octocat", testutil.NewGistBuilder(fmt.Sprintf("g%d", i)).Build())
	}

	client := NewRESTClient(Options{Endpoint: api.URL})
	gists, err := client.ListGists(context.Background(), "octocat")
	require.NoError(t, err)

	require.Len(t, gists, 5)
	for i, g := range gists {
		assert.Equal(t, fmt.Sprintf("g%d", i+1), g.ID)
		assert.Equal(t, "https://gist.github.com/octocat/"+g.ID, g.HTMLURL)
	}
	assert.Equal(t, 3, api.RequestCount())
}

func TestRESTClient_TokenSentOnEveryPage(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 1)
	api.Token = "s3cret"
	api.AddGist("octocat", testutil.NewGistBuilder("g1").Build())
	api.AddGist("octocat", testutil.NewGistBuilder("g2").Build())
	api.AddGist("octocat", testutil.NewGistBuilder("g3").Build())

	client := NewRESTClient(Options{Endpoint: api.URL, Token: "s3cret"})
	gists, err := client.ListGists(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, gists, 3)

	headers := api.AuthHeaders()
	require.Len(t, headers, 3)
	for _, h := range headers {
		assert.Equal(t, "token s3cret", h)
	}
}

type countingTransport struct {
	next  http.RoundTripper
	calls *atomic.Int32
}

func (c countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.next.RoundTrip(req)
}

func TestRESTClient_InstrumentSeesEveryAttempt(t *testing.T) {
	server, attempts := testutil.NewTransientErrorServer(t, 1, http.StatusBadGateway)

	var calls atomic.Int32
	client := NewRESTClient(Options{
		Endpoint:   server.URL,
		MaxRetries: 1,
		Instrument: func(next http.RoundTripper) http.RoundTripper {
			return countingTransport{next: next, calls: &calls}
		},
	})

	_, err := client.ListComments(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, client.RequestCount())
}

func TestRESTClient_NoTokenSendsNoAuthorization(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 0)
	api.AddUser("octocat")

	client := NewRESTClient(Options{Endpoint: api.URL})
	_, err := client.ListGists(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, []string{""}, api.AuthHeaders())
}

func TestRESTClient_PerPage(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 0)
	api.AddGist("octocat", testutil.NewGistBuilder("g1").Build(),
		testutil.NewComment(1, "a", "2021-01-01T00:00:00Z", "one"),
		testutil.NewComment(2, "b", "2021-01-02T00:00:00Z", "two"),
		testutil.NewComment(3, "c", "2021-01-03T00:00:00Z", "three"),
	)

	client := NewRESTClient(Options{Endpoint: api.URL, PerPage: 1})
	comments, err := client.ListComments(context.Background(), "g1")
	require.NoError(t, err)

	require.Len(t, comments, 3)
	assert.Equal(t, "a", comments[0].User.Login)
	assert.Equal(t, "c", comments[2].User.Login)
	assert.Equal(t, 3, api.RequestCount())
}

func TestRESTClient_PassThroughFields(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 0)
	api.AddGist("octocat", testutil.NewGistBuilder("g1").WithFiles("a.go", "b.go").Build())

	client := NewRESTClient(Options{Endpoint: api.URL})
	gists, err := client.ListGists(context.Background(), "octocat")
	require.NoError(t, err)

	out, err := json.Marshal(gists)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "G_g1", decoded[0]["node_id"])
	assert.Contains(t, decoded[0]["files"], "b.go")
}

func TestRESTClient_URLs(t *testing.T) {
	client := NewRESTClient(Options{Endpoint: "https://ghe.example.com/api/v3/"})
	assert.Equal(t, "https://ghe.example.com/api/v3/users/octo%20cat/gists", client.GistsURL("octo cat"))
	assert.Equal(t, "https://ghe.example.com/api/v3/gists/abc/comments", client.CommentsURL("abc"))

	paged := NewRESTClient(Options{PerPage: 500})
	assert.Equal(t, "https://api.github.com/users/octocat/gists?per_page=100", paged.GistsURL("octocat"))
}

func TestRESTClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   map[string]string
		sentinel error
	}{
		{"unknown user", http.StatusNotFound, nil, apperrors.ErrUserNotFound},
		{"bad credentials", http.StatusUnauthorized, nil, apperrors.ErrInvalidToken},
		{"too many requests", http.StatusTooManyRequests, nil, apperrors.ErrRateLimit},
		{"primary rate limit", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Limit": "60"}, apperrors.ErrRateLimit},
		{"server error", http.StatusInternalServerError, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			client := NewRESTClient(Options{Endpoint: server.URL})
			_, err := client.ListGists(context.Background(), "octocat")
			require.Error(t, err)

			if tt.sentinel == nil {
				for _, s := range []error{apperrors.ErrUserNotFound, apperrors.ErrInvalidToken, apperrors.ErrRateLimit, apperrors.ErrNetworkFailure} {
					assert.False(t, errors.Is(err, s), "unexpected sentinel %v in %v", s, err)
				}
				return
			}
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestRESTClient_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := NewRESTClient(Options{Endpoint: server.URL})
	_, err := client.ListGists(context.Background(), "octocat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestRESTClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := NewRESTClient(Options{Endpoint: endpoint})
	_, err := client.ListGists(context.Background(), "octocat")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetworkFailure)
}

func TestRESTClient_ContextCanceled(t *testing.T) {
	api := testutil.NewGistAPIServer(t, 0)
	api.AddUser("octocat")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewRESTClient(Options{Endpoint: api.URL})
	_, err := client.ListGists(ctx, "octocat")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, apperrors.ErrNetworkFailure)
}
