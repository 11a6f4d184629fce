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

// Package metadata types define the audit record written after each live
// fetch.
package metadata

import (
	"time"
)

// FetchMetadata is the record of a single live fetch: who was fetched, with
// which settings, what came back and which cache files were written.
type FetchMetadata struct {
	ToolVersion   string       `json:"tool_version"`
	FetchID       string       `json:"fetch_id"`
	Parameters    FetchParams  `json:"parameters"`
	Results       FetchResults `json:"results"`
	Cache         *CacheRef    `json:"cache,omitempty"`
	PreviousFetch *FetchRef    `json:"previous_fetch,omitempty"`
}

// FetchParams captures the inputs of a fetch. The token itself is never
// recorded, only whether one was used.
type FetchParams struct {
	Username      string `json:"username"`
	Authenticated bool   `json:"authenticated"`
	Concurrency   int    `json:"concurrency"`
	PerPage       int    `json:"per_page,omitempty"`
}

// FetchResults holds counts and timings of a completed fetch.
type FetchResults struct {
	TotalGists     int       `json:"total_gists"`
	CommentedGists int       `json:"commented_gists"`
	TotalComments  int       `json:"total_comments"`
	OldestComment  time.Time `json:"oldest_comment,omitzero"`
	NewestComment  time.Time `json:"newest_comment,omitzero"`
	Duration       string    `json:"fetch_duration"`
	APICallCount   int       `json:"api_calls_made"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// CacheRef identifies the cache files a fetch produced. The checksums let a
// later replay detect files edited or replaced since the fetch.
type CacheRef struct {
	GistsFile      string `json:"gists_file"`
	CommentsFile   string `json:"comments_file"`
	GistsSHA256    string `json:"gists_sha256"`
	CommentsSHA256 string `json:"comments_sha256"`
}

// FetchRef points at the previous fetch of the same user.
type FetchRef struct {
	FetchID     string    `json:"fetch_id"`
	CompletedAt time.Time `json:"completed_at"`
}
