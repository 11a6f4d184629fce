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

// Package metadata tracks and persists information about fetch operations.
// Each live fetch records the user fetched, the settings used, gist and
// comment counts, the comment date range, API usage and the checksums of the
// cache files it wrote.
//
// Metadata is saved as indented JSON next to the cache files, one
// fetch-metadata-{unixnano}.json per fetch, so external tools can inspect fetch
// history.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/gist-comments/internal/github"
)

// Tracker collects statistics during a fetch. Its methods are safe for
// concurrent use, so it can be fed from the comment fetching goroutines.
type Tracker struct {
	startTime time.Time

	mu           sync.Mutex
	apiCallCount int
	stats        CommentStats
}

// CommentStats holds running totals of what a fetch returned.
type CommentStats struct {
	TotalGists     int       // Gists listed for the user
	CommentedGists int       // Gists with at least one comment
	TotalComments  int       // Comments across all gists
	OldestComment  time.Time // Earliest parseable comment timestamp
	NewestComment  time.Time // Latest parseable comment timestamp
}

// New creates a tracker started at the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// SetAPICallCount records the number of HTTP requests the fetch issued.
func (t *Tracker) SetAPICallCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount = n
}

// RecordGists records the size of the gist list.
func (t *Tracker) RecordGists(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.TotalGists = n
}

// RecordComments adds one gist's comments to the running statistics.
// Comments with unparseable timestamps are counted but do not move the date
// range.
func (t *Tracker) RecordComments(comments []github.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(comments) > 0 {
		t.stats.CommentedGists++
	}
	t.stats.TotalComments += len(comments)

	for _, c := range comments {
		ts, err := c.Time()
		if err != nil {
			continue
		}
		if t.stats.OldestComment.IsZero() || ts.Before(t.stats.OldestComment) {
			t.stats.OldestComment = ts
		}
		if ts.After(t.stats.NewestComment) {
			t.stats.NewestComment = ts
		}
	}
}

// Stats returns a snapshot of the statistics gathered so far.
func (t *Tracker) Stats() CommentStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// GenerateMetadata builds the metadata record for a completed fetch. cache
// and previousFetch may be nil.
func (t *Tracker) GenerateMetadata(toolVersion string, params FetchParams, cache *CacheRef, previousFetch *FetchRef) *FetchMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()

	return &FetchMetadata{
		ToolVersion: toolVersion,
		FetchID:     uuid.NewString(),
		Parameters:  params,
		Results: FetchResults{
			TotalGists:     t.stats.TotalGists,
			CommentedGists: t.stats.CommentedGists,
			TotalComments:  t.stats.TotalComments,
			OldestComment:  t.stats.OldestComment,
			NewestComment:  t.stats.NewestComment,
			Duration:       completedAt.Sub(t.startTime).String(),
			APICallCount:   t.apiCallCount,
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
		Cache:         cache,
		PreviousFetch: previousFetch,
	}
}

// SaveMetadata writes metadata to dir as fetch-metadata-{unixnano}.json,
// named after the fetch start time. The file is written to a temporary name and
// renamed into place. It returns the path written.
func SaveMetadata(metadata *FetchMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("fetch-metadata-%d.json", metadata.Results.StartedAt.UnixNano())
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return path, nil
}

// LoadLatestMetadata returns the most recent metadata record in dir, or nil
// when none exists. When username is not empty, only records for that user
// are considered. Unreadable or malformed files are skipped.
func LoadLatestMetadata(dir, username string) (*FetchMetadata, error) {
	pattern := filepath.Join(dir, "fetch-metadata-*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	var latest *FetchMetadata
	for _, file := range files {
		md, err := readMetadata(file)
		if err != nil {
			continue
		}
		if username != "" && md.Parameters.Username != username {
			continue
		}
		if latest == nil || md.Results.StartedAt.After(latest.Results.StartedAt) {
			latest = md
		}
	}

	return latest, nil
}

// WriteMetadataToWriter writes metadata as indented JSON.
func WriteMetadataToWriter(metadata *FetchMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// Ref returns a reference to this fetch for use as a later PreviousFetch.
func (m *FetchMetadata) Ref() *FetchRef {
	return &FetchRef{
		FetchID:     m.FetchID,
		CompletedAt: m.Results.CompletedAt,
	}
}

func readMetadata(path string) (*FetchMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var metadata FetchMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	return &metadata, nil
}
