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
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/gist-comments/internal/cache"
	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/internal/logging"
	"github.com/sirseerhq/gist-comments/internal/metadata"
)

// renderOptions holds the render command's flags and arguments.
type renderOptions struct {
	gistsFile    string
	commentsFile string
	outputFile   string
	cacheDir     string
}

// newRenderCommand creates the render command
func newRenderCommand(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [GISTS_FILE COMMENTS_FILE]",
		Short: "Print the digest from cached gists and comments",
		Long: `Print the Markdown digest from previously fetched gists and comments
without contacting GitHub.

With no arguments the cache files in the cache directory are used. Otherwise
both GISTS_FILE and COMMENTS_FILE must be given. A missing or malformed file
is an error; render never falls back to fetching.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("%w: expected no arguments or GISTS_FILE and COMMENTS_FILE, got %d argument(s)",
					apperrors.ErrUsage, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				opts.gistsFile, opts.commentsFile = args[0], args[1]
			}
			return runRender(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Directory holding gists.json and comments.json (default from config: .)")

	return cmd
}

// runRender executes the render command
func runRender(ctx context.Context, a *app, opts renderOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	paths := cache.Paths{Gists: opts.gistsFile, Comments: opts.commentsFile}
	if paths.Gists == "" {
		dir := a.cfg.Cache.Dir
		if opts.cacheDir != "" {
			dir = opts.cacheDir
		}
		paths = cache.NewPaths(dir, a.cfg.Cache.GistsFile, a.cfg.Cache.CommentsFile)
	}
	a.logger.Debug("rendering from cache", "gists_file", paths.Gists, "comments_file", paths.Comments)

	set, err := cache.Load(paths)
	if err != nil {
		return err
	}

	checkCacheIntegrity(a, paths)

	return writeDigest(a, opts.outputFile, set)
}

// checkCacheIntegrity compares the cache files with the checksums recorded by
// the fetch that wrote them and warns when they differ. Files without a
// matching metadata record are not checked.
func checkCacheIntegrity(a *app, paths cache.Paths) {
	dir := filepath.Dir(paths.Gists)
	md, err := metadata.LoadLatestMetadata(dir, "")
	if err != nil || md == nil || md.Cache == nil {
		return
	}

	checks := []struct {
		path     string
		recorded string
		want     string
	}{
		{paths.Gists, md.Cache.GistsFile, md.Cache.GistsSHA256},
		{paths.Comments, md.Cache.CommentsFile, md.Cache.CommentsSHA256},
	}
	for _, c := range checks {
		if !samePath(c.path, c.recorded) {
			continue
		}
		sum, err := cache.Checksum(c.path)
		if err != nil {
			continue
		}
		if sum != c.want {
			a.logger.Warn("cache file changed since it was fetched",
				logging.Path(c.path), "fetch_id", md.FetchID)
		}
	}
}

func samePath(p, q string) bool {
	absP, errP := filepath.Abs(p)
	absQ, errQ := filepath.Abs(q)
	if errP != nil || errQ != nil {
		return filepath.Clean(p) == filepath.Clean(q)
	}
	return absP == absQ
}
