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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	gogithub "github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/internal/giterror"
	"github.com/sirseerhq/gist-comments/internal/logging"
	"github.com/sirseerhq/gist-comments/pkg/version"
)

// DefaultEndpoint is the public GitHub REST API root.
const DefaultEndpoint = "https://api.github.com"

// maxPerPage is the largest page size the REST API accepts.
const maxPerPage = 100

// Options configures a RESTClient.
type Options struct {
	// Token is sent as "Authorization: token <Token>" on every request,
	// including follow-up pages. Empty means unauthenticated.
	Token string

	// Endpoint is the REST API root. Defaults to DefaultEndpoint.
	Endpoint string

	// PerPage sets the per_page query parameter on the first request of
	// each collection. Zero leaves the API default.
	PerPage int

	// MaxRetries is the number of extra attempts for transient failures.
	// Zero disables retries.
	MaxRetries int

	// Transport is the base round tripper. Defaults to a pooled transport.
	Transport http.RoundTripper

	// Instrument, when set, wraps the base round tripper. Every attempt,
	// retries included, passes through it.
	Instrument func(http.RoundTripper) http.RoundTripper

	// Logger receives per-page debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// RESTClient implements Client against the GitHub REST API.
type RESTClient struct {
	gh        *gogithub.Client
	endpoint  string
	perPage   int
	inspector giterror.Inspector
	logger    *slog.Logger
	requests  atomic.Int64
}

// NewRESTClient creates a REST client. The transport chain is
// oauth2 (when a token is set) -> retry (when enabled) -> instrument -> base.
func NewRESTClient(opts Options) *RESTClient {
	base := opts.Transport
	if base == nil {
		base = newBaseTransport()
	}
	if opts.Instrument != nil {
		base = opts.Instrument(base)
	}
	if opts.MaxRetries > 0 {
		base = newRetryTransport(base, opts.MaxRetries)
	}
	if opts.Token != "" {
		// TokenType "token" yields "Authorization: token <value>".
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "token"})
		base = &oauth2.Transport{Source: src, Base: base}
	}

	gh := gogithub.NewClient(&http.Client{Transport: base})
	gh.UserAgent = version.UserAgent()

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	perPage := opts.PerPage
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return &RESTClient{
		gh:        gh,
		endpoint:  endpoint,
		perPage:   perPage,
		inspector: giterror.NewInspector(),
		logger:    logger,
	}
}

// newBaseTransport returns a pooled transport sized for the comment fan-out.
// Connections per host are not capped.
func newBaseTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// ListGists implements Client.
func (c *RESTClient) ListGists(ctx context.Context, username string) ([]Gist, error) {
	return fetchAll[Gist](ctx, c, c.GistsURL(username))
}

// ListComments implements Client.
func (c *RESTClient) ListComments(ctx context.Context, gistID string) ([]Comment, error) {
	return fetchAll[Comment](ctx, c, c.CommentsURL(gistID))
}

// RequestCount returns the number of API requests issued so far.
func (c *RESTClient) RequestCount() int {
	return int(c.requests.Load())
}

// GistsURL is the collection URL of a user's gists.
func (c *RESTClient) GistsURL(username string) string {
	return c.withPerPage(c.endpoint + "/users/" + url.PathEscape(username) + "/gists")
}

// CommentsURL is the collection URL of a gist's comments.
func (c *RESTClient) CommentsURL(gistID string) string {
	return c.withPerPage(c.endpoint + "/gists/" + url.PathEscape(gistID) + "/comments")
}

func (c *RESTClient) withPerPage(u string) string {
	if c.perPage <= 0 {
		return u
	}
	return u + "?per_page=" + strconv.Itoa(c.perPage)
}

// fetchAll retrieves every page of a JSON array collection starting at
// pageURL. Each page is appended in order; the next page is the rel="next"
// target of the Link header, used verbatim.
func fetchAll[T any](ctx context.Context, c *RESTClient, pageURL string) ([]T, error) {
	all := []T{}
	page := 0

	for pageURL != "" {
		page++

		req, err := c.gh.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
		}

		var items []T
		c.requests.Add(1)
		resp, err := c.gh.Do(ctx, req, &items)
		if err != nil {
			return nil, c.mapError(err, pageURL)
		}
		all = append(all, items...)

		next, ok := nextPageURL(resp.Header.Values("Link"))
		c.logger.Debug("fetched page",
			logging.URL(pageURL),
			logging.Page(page),
			slog.Int("items", len(items)),
			slog.Bool("has_next", ok),
		)
		if !ok {
			break
		}
		pageURL = next
	}

	return all, nil
}

// mapError converts a go-github or transport error into one wrapping the
// matching sentinel, keeping the original error in the chain.
func (c *RESTClient) mapError(err error, pageURL string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request to %s aborted: %w", pageURL, err)
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Provide a token or wait before retrying: %w: %w", apperrors.ErrRateLimit, err)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via argument, --token flag or GITHUB_TOKEN environment variable: %w: %w", apperrors.ErrInvalidToken, err)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("%s not found. Please check the username and your access permissions: %w: %w", pageURL, apperrors.ErrUserNotFound, err)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w: %w", apperrors.ErrNetworkFailure, err)
	}

	return fmt.Errorf("failed to fetch %s: %w", pageURL, err)
}
