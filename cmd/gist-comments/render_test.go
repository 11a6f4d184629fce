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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/gist-comments/internal/metadata"
	"github.com/sirseerhq/gist-comments/test/testutil"
)

func TestRender_MatchesLiveFetchWithoutNetwork(t *testing.T) {
	setupEnv(t)
	api := newAliceServer(t)

	live, stderr, code := runCLI(t, "fetch", "alice")
	require.Equal(t, 0, code, stderr)
	served := api.RequestCount()

	api.Close()

	replay, stderr, code := runCLI(t, "render")
	require.Equal(t, 0, code, stderr)

	assert.Equal(t, live, replay)
	assert.Equal(t, served, api.RequestCount(), "render must not call the API")
	assert.NotContains(t, stderr, "Fetched")
	assert.NotContains(t, stderr, "changed since")
}

func TestRender_ExplicitFiles(t *testing.T) {
	dir := setupEnv(t)
	gistsPath, commentsPath := testutil.WriteCacheFiles(t, dir,
		[]interface{}{
			testutil.NewGistBuilder("a").WithOwner("alice").WithDescription("A").Build(),
			testutil.NewGistBuilder("b").WithOwner("alice").WithDescription("B").Build(),
			testutil.NewGistBuilder("c").WithOwner("alice").WithDescription("C").Build(),
		},
		[]interface{}{
			[]interface{}{testutil.NewComment(1, "u1", "2021-01-01", "first")},
			[]interface{}{
				testutil.NewComment(2, "x", "2021-06-01", " hi "),
				testutil.NewComment(3, "y", "2021-05-01", "yo"),
			},
			[]interface{}{},
		},
	)

	stdout, stderr, code := runCLI(t, "render", gistsPath, commentsPath)
	require.Equal(t, 0, code, stderr)

	want := "# [B](https://gist.github.com/alice/b)\n\n" +
		"## x (2021-06-01)\nhi\n\n" +
		"## y (2021-05-01)\nyo\n\n" +
		"# [A](https://gist.github.com/alice/a)\n\n" +
		"## u1 (2021-01-01)\nfirst\n"
	assert.Equal(t, want, stdout)
}

func TestRender_CacheDirFlagAndOutputFile(t *testing.T) {
	dir := setupEnv(t)
	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	testutil.WriteCacheFiles(t, cacheDir,
		[]interface{}{testutil.NewGistBuilder("a").WithOwner("alice").WithDescription("A").Build()},
		[]interface{}{[]interface{}{testutil.NewComment(1, "bob", "2021-01-01T00:00:00Z", "ok")}},
	)
	outFile := filepath.Join(dir, "out.md")

	stdout, stderr, code := runCLI(t, "render", "--cache-dir", cacheDir, "--output", outFile)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "# [A](https://gist.github.com/alice/a)\n\n## bob (2021-01-01T00:00:00Z)\nok\n", string(data))
}

func TestRender_EmptyCacheRendersEmptyDocument(t *testing.T) {
	dir := setupEnv(t)
	testutil.WriteCacheFiles(t, dir, []interface{}{}, []interface{}{})

	stdout, stderr, code := runCLI(t, "render")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "\n", stdout)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		gists    string
		comments string
		wantMsg  string
	}{
		{
			name:    "missing cache",
			wantMsg: "not found",
		},
		{
			name:     "corrupt gists file",
			gists:    "[{",
			comments: "[]",
			wantMsg:  "invalid cache file",
		},
		{
			name:     "mismatched counts",
			gists:    `[{"id":"a","description":"A","html_url":"u"}]`,
			comments: "[]",
			wantMsg:  "mismatched gists/comments counts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupEnv(t)
			if tt.gists != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "gists.json"), []byte(tt.gists), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "comments.json"), []byte(tt.comments), 0o600))
			}

			stdout, stderr, code := runCLI(t, "render")
			assert.Equal(t, 4, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: ")
			assert.Contains(t, stderr, tt.wantMsg)
			assert.NotContains(t, stderr, "Usage:")
		})
	}
}

func TestRender_WarnsWhenCacheChangedSinceFetch(t *testing.T) {
	dir := setupEnv(t)
	newAliceServer(t)

	_, stderr, code := runCLI(t, "fetch", "alice")
	require.Equal(t, 0, code, stderr)

	gistsPath := filepath.Join(dir, "gists.json")
	data, err := os.ReadFile(gistsPath)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "Shell helpers", "Shell tricks", 1)
	require.NoError(t, os.WriteFile(gistsPath, []byte(edited), 0o600))

	stdout, stderr, code := runCLI(t, "render")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "# [Shell tricks]")
	assert.Contains(t, stderr, "cache file changed since it was fetched")
	assert.Contains(t, stderr, "gists.json")
	assert.NotContains(t, stderr, "comments.json")
}

func TestRender_WarnsFromAnotherDirectory(t *testing.T) {
	dir := setupEnv(t)
	newAliceServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cache"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "elsewhere"), 0o755))

	// Relative cache dir at fetch time.
	_, stderr, code := runCLI(t, "fetch", "alice", "--cache-dir", "cache")
	require.Equal(t, 0, code, stderr)

	matches, err := filepath.Glob(filepath.Join(dir, "cache", "fetch-metadata-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	var md metadata.FetchMetadata
	testutil.ReadJSON(t, matches[0], &md)
	require.NotNil(t, md.Cache)
	assert.True(t, filepath.IsAbs(md.Cache.GistsFile), md.Cache.GistsFile)
	assert.True(t, filepath.IsAbs(md.Cache.CommentsFile), md.Cache.CommentsFile)

	commentsPath := filepath.Join(dir, "cache", "comments.json")
	data, err := os.ReadFile(commentsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(commentsPath, []byte(strings.Replace(string(data), "Nice", "Neat", 1)), 0o600))

	t.Chdir(filepath.Join(dir, "elsewhere"))
	_, stderr, code = runCLI(t, "render", "--cache-dir", "../cache")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "cache file changed since it was fetched")
	assert.Contains(t, stderr, "comments.json")
}
