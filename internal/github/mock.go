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
	"fmt"
	"sync"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
)

// MockClient is a mock implementation of the GitHub Client interface for testing.
// It is safe for the concurrent use GetGistsAndComments makes of it.
type MockClient struct {
	// Gists to return from ListGists
	Gists []Gist

	// Comments to return from ListComments, keyed by gist ID
	Comments map[string][]Comment

	// Error to return from every call
	Error error

	// FailGistID makes ListComments fail for this gist only
	FailGistID string

	// Behavior flags
	ShouldFailAuth     bool
	ShouldFailNetwork  bool
	ShouldFailNotFound bool

	mu           sync.Mutex
	gistCalls    int
	commentCalls []string
	lastUsername string
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	gists, comments := generateTestData()
	return &MockClient{
		Gists:    gists,
		Comments: comments,
	}
}

func (m *MockClient) fail() error {
	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", apperrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", apperrors.ErrNetworkFailure)
	}
	if m.ShouldFailNotFound {
		return fmt.Errorf("user not found: %w", apperrors.ErrUserNotFound)
	}
	return m.Error
}

// ListGists implements the Client interface
func (m *MockClient) ListGists(ctx context.Context, username string) ([]Gist, error) {
	m.mu.Lock()
	m.gistCalls++
	m.lastUsername = username
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.Gists, nil
}

// ListComments implements the Client interface
func (m *MockClient) ListComments(ctx context.Context, gistID string) ([]Comment, error) {
	m.mu.Lock()
	m.commentCalls = append(m.commentCalls, gistID)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fail(); err != nil {
		return nil, err
	}
	if gistID == m.FailGistID {
		return nil, fmt.Errorf("comments of %s: %w", gistID, apperrors.ErrNetworkFailure)
	}
	if cs, ok := m.Comments[gistID]; ok {
		return cs, nil
	}
	return []Comment{}, nil
}

// GistCalls returns how many times ListGists was called.
func (m *MockClient) GistCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gistCalls
}

// CommentCalls returns the gist IDs ListComments was called with, in call order.
func (m *MockClient) CommentCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commentCalls...)
}

// LastUsername returns the username of the most recent ListGists call.
func (m *MockClient) LastUsername() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsername
}

// generateTestData creates three gists: one with two comments, one with a
// single newer comment and one without comments.
func generateTestData() ([]Gist, map[string][]Comment) {
	gists := []Gist{
		{ID: "aa11", Description: "Shell helpers", HTMLURL: "https://gist.github.com/alice/aa11"},
		{ID: "bb22", Description: "Go snippets", HTMLURL: "https://gist.github.com/alice/bb22"},
		{ID: "cc33", Description: "Empty notes", HTMLURL: "https://gist.github.com/alice/cc33"},
	}
	comments := map[string][]Comment{
		"aa11": {
			{User: User{Login: "bob"}, CreatedAt: "2021-01-01T10:00:00Z", Body: "Nice trick"},
			{User: User{Login: "carol"}, CreatedAt: "2020-12-31T09:00:00Z", Body: " thanks! "},
		},
		"bb22": {
			{User: User{Login: "dave"}, CreatedAt: "2021-06-01T12:00:00Z", Body: "Works on 1.22"},
		},
	}
	return gists, comments
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithGists sets specific gists and comments to return
func WithGists(gists []Gist, comments map[string][]Comment) MockClientOption {
	return func(m *MockClient) {
		m.Gists = gists
		m.Comments = comments
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// WithCommentFailure makes comment fetches for one gist fail
func WithCommentFailure(gistID string) MockClientOption {
	return func(m *MockClient) {
		m.FailGistID = gistID
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
