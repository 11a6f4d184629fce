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

package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/internal/github"
)

const (
	// DefaultGistsFile is the file name of the cached gist list.
	DefaultGistsFile = "gists.json"
	// DefaultCommentsFile is the file name of the cached comment lists.
	DefaultCommentsFile = "comments.json"
)

// Paths locates the two cache files.
type Paths struct {
	Gists    string
	Comments string
}

// NewPaths joins the cache file names onto dir.
func NewPaths(dir, gistsFile, commentsFile string) Paths {
	return Paths{
		Gists:    filepath.Join(dir, gistsFile),
		Comments: filepath.Join(dir, commentsFile),
	}
}

// Save writes both cache files, replacing any existing ones.
func Save(paths Paths, set *github.GistCommentSet) error {
	if len(set.Gists) != len(set.Comments) {
		return fmt.Errorf("refusing to cache %d gists with %d comment lists: %w",
			len(set.Gists), len(set.Comments), apperrors.ErrMismatchedCounts)
	}

	gists := set.Gists
	if gists == nil {
		gists = []github.Gist{}
	}
	comments := make([][]github.Comment, len(set.Comments))
	for i, cs := range set.Comments {
		if cs == nil {
			cs = []github.Comment{}
		}
		comments[i] = cs
	}

	if err := writeJSON(paths.Gists, gists); err != nil {
		return err
	}
	return writeJSON(paths.Comments, comments)
}

// Load reads both cache files. A missing, unreadable or malformed file is
// reported as ErrInvalidCache.
func Load(paths Paths) (*github.GistCommentSet, error) {
	var gists []github.Gist
	if err := readJSON(paths.Gists, &gists); err != nil {
		return nil, err
	}

	var comments [][]github.Comment
	if err := readJSON(paths.Comments, &comments); err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i] == nil {
			comments[i] = []github.Comment{}
		}
	}

	return &github.GistCommentSet{Gists: gists, Comments: comments}, nil
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("cache file %s not found. Run 'gist-comments fetch' first: %w", path, apperrors.ErrInvalidCache)
		}
		return fmt.Errorf("failed to read cache file %s: %w: %w", path, apperrors.ErrInvalidCache, err)
	}

	if string(bytes.TrimSpace(data)) == "null" {
		return fmt.Errorf("cache file %s does not contain a JSON array: %w", path, apperrors.ErrInvalidCache)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache file %s is corrupted (invalid JSON): %w: %w", path, apperrors.ErrInvalidCache, err)
	}
	return nil
}

// writeJSON writes v as compact JSON using a write-to-temp-and-rename
// sequence.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	file, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary cache file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
