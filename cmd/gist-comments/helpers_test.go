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
	"bytes"
	"testing"

	"github.com/sirseerhq/gist-comments/test/testutil"
)

// aliceDigest is the digest of the gists seeded by newAliceServer.
const aliceDigest = `# [Go snippets](https://gist.github.com/alice/bb22)

## dave (2021-06-01T12:00:00Z)
Works on 1.22

# [Shell helpers](https://gist.github.com/alice/aa11)

## bob (2021-01-01T10:00:00Z)
Nice trick

## carol (2020-12-31T09:00:00Z)
thanks!
`

// setupEnv isolates a CLI run: HOME and the working directory point at a
// fresh temp dir and no token or override variables leak in.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, env := range []string{
		"GITHUB_TOKEN",
		"GITHUB_API_ENDPOINT",
		"GIST_COMMENTS_CONCURRENCY",
		"GIST_COMMENTS_PER_PAGE",
		"GIST_COMMENTS_MAX_RETRIES",
		"GIST_COMMENTS_TIMEOUT",
		"GIST_COMMENTS_CACHE_DIR",
		"GIST_COMMENTS_NO_CACHE",
	} {
		t.Setenv(env, "")
	}
	return dir
}

// newAliceServer starts a gist API with three gists for alice: two with
// comments and one without. Pages hold two items.
func newAliceServer(t *testing.T) *testutil.GistAPIServer {
	t.Helper()
	api := testutil.NewGistAPIServer(t, 2)
	api.AddGist("alice",
		testutil.NewGistBuilder("aa11").WithOwner("alice").WithDescription("Shell helpers").Build(),
		testutil.NewComment(1, "bob", "2021-01-01T10:00:00Z", "Nice trick"),
		testutil.NewComment(2, "carol", "2020-12-31T09:00:00Z", " thanks! "),
	)
	api.AddGist("alice",
		testutil.NewGistBuilder("bb22").WithOwner("alice").WithDescription("Go snippets").Build(),
		testutil.NewComment(3, "dave", "2021-06-01T12:00:00Z", "Works on 1.22"),
	)
	api.AddGist("alice",
		testutil.NewGistBuilder("cc33").WithOwner("alice").WithDescription("Empty notes").Build(),
	)
	t.Setenv("GITHUB_API_ENDPOINT", api.URL)
	return api
}

// runCLI runs the CLI in-process and returns its output and exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}
