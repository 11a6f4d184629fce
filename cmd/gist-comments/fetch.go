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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/gist-comments/internal/cache"
	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/internal/github"
	"github.com/sirseerhq/gist-comments/internal/logging"
	"github.com/sirseerhq/gist-comments/internal/metadata"
	"github.com/sirseerhq/gist-comments/internal/metrics"
	"github.com/sirseerhq/gist-comments/internal/output"
	"github.com/sirseerhq/gist-comments/internal/render"
	"github.com/sirseerhq/gist-comments/internal/tracing"
	"github.com/sirseerhq/gist-comments/pkg/version"
)

// fetchOptions holds the fetch command's flags and arguments.
type fetchOptions struct {
	username    string
	argToken    string
	flagToken   string
	outputFile  string
	cacheDir    string
	noCache     bool
	metricsFile string
	traceFile   string

	// Flag overrides, applied only when set on the command line.
	concurrency    int
	concurrencySet bool
	perPage        int
	perPageSet     bool
}

// newFetchCommand creates the fetch command
func newFetchCommand(a *app) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch USERNAME [TOKEN]",
		Short: "Fetch a user's gists and comments from GitHub and print the digest",
		Long: `Fetch all gists of USERNAME and the comments on each of them, print the
Markdown digest and write gists.json and comments.json to the cache directory.

A token is optional; without one only public gists are visible. The token is
taken from, in order:
  - the TOKEN argument
  - the --token flag
  - the environment variable named by github.token_env (default GITHUB_TOKEN)`,
		Args: usageArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.username = args[0]
			if len(args) > 1 {
				opts.argToken = args[1]
			}
			opts.concurrencySet = cmd.Flags().Changed("concurrency")
			opts.perPageSet = cmd.Flags().Changed("per-page")
			return runFetch(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.flagToken, "token", "", "GitHub personal access token (overrides the token environment variable)")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Directory for gists.json and comments.json (default from config: .)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Do not write the cache files")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Maximum concurrent comment fetches (0 = unlimited)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 0, "Items per API page, 1-100 (0 = API default)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().StringVar(&opts.traceFile, "trace-file", "", "Write OpenTelemetry spans of the fetch to this file as JSON")

	return cmd
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, a *app, opts fetchOptions) error {
	if opts.username == "" {
		return fmt.Errorf("%w: USERNAME must not be empty", apperrors.ErrUsage)
	}

	cfg := a.cfg
	if opts.cacheDir != "" {
		cfg.Cache.Dir = opts.cacheDir
	}
	if opts.noCache {
		cfg.Cache.Disabled = true
	}
	if opts.concurrencySet {
		cfg.Fetch.Concurrency = opts.concurrency
	}
	if opts.perPageSet {
		cfg.Fetch.PerPage = opts.perPage
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	token := getToken(opts.argToken, opts.flagToken, cfg.GitHub.TokenEnv)
	logger := logging.WithUsername(a.logger, opts.username)
	logger.Debug("starting fetch",
		logging.Token(token),
		"endpoint", cfg.GitHub.APIEndpoint,
		"concurrency", cfg.Fetch.Concurrency,
		"per_page", cfg.Fetch.PerPage,
		"max_retries", cfg.Fetch.MaxRetries)

	if cfg.Fetch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Fetch.Timeout)
		defer cancel()
	}

	if opts.traceFile != "" {
		stop, err := startTracing(ctx, opts.traceFile)
		if err != nil {
			return err
		}
		defer stop(a)
	}

	recorder := metrics.New()
	tracker := metadata.New()

	client := github.NewRESTClient(github.Options{
		Token:      token,
		Endpoint:   cfg.GitHub.APIEndpoint,
		PerPage:    cfg.Fetch.PerPage,
		MaxRetries: cfg.Fetch.MaxRetries,
		Instrument: recorder.InstrumentRoundTripper,
		Logger:     logger,
	})

	set, err := github.GetGistsAndComments(ctx, client, opts.username, github.AggregateOptions{
		Concurrency: cfg.Fetch.Concurrency,
		Progress:    a.stderr,
		Logger:      logger,
		OnComments: func(_ string, comments []github.Comment) {
			tracker.RecordComments(comments)
			recorder.AddItems(metrics.KindComment, len(comments))
		},
	})
	tracker.SetAPICallCount(client.RequestCount())
	if err != nil {
		writeMetrics(a, opts.metricsFile, recorder)
		return err
	}
	tracker.RecordGists(len(set.Gists))
	recorder.AddItems(metrics.KindGist, len(set.Gists))

	stats := tracker.Stats()
	logger.Debug("fetch complete",
		"gists", stats.TotalGists,
		"commented_gists", stats.CommentedGists,
		"comments", set.CommentCount(),
		"oldest_comment", stats.OldestComment,
		"newest_comment", stats.NewestComment,
		"api_calls", client.RequestCount())

	var cacheRef *metadata.CacheRef
	if !cfg.Cache.Disabled {
		paths := cache.NewPaths(cfg.Cache.Dir, cfg.Cache.GistsFile, cfg.Cache.CommentsFile)
		fmt.Fprintf(a.stderr, "Writing %d gists to %s\n", len(set.Gists), paths.Gists)
		fmt.Fprintf(a.stderr, "Writing %d comment lists to %s\n", len(set.Comments), paths.Comments)
		if err := cache.Save(paths, set); err != nil {
			return fmt.Errorf("failed to write cache: %w", err)
		}
		cacheRef, err = newCacheRef(paths)
		if err != nil {
			return err
		}
	}

	if err := writeDigest(a, opts.outputFile, set); err != nil {
		return err
	}

	if cacheRef != nil {
		saveFetchMetadata(a, tracker, cfg.Cache.Dir, metadata.FetchParams{
			Username:      opts.username,
			Authenticated: token != "",
			Concurrency:   cfg.Fetch.Concurrency,
			PerPage:       cfg.Fetch.PerPage,
		}, cacheRef)
	}

	writeMetrics(a, opts.metricsFile, recorder)
	return nil
}

// getToken returns the first non-empty of the positional token, the flag
// token and the environment variable named envName.
func getToken(argToken, flagToken, envName string) string {
	if argToken != "" {
		return argToken
	}
	if flagToken != "" {
		return flagToken
	}
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

// writeDigest renders set and writes it to outputFile or stdout.
func writeDigest(a *app, outputFile string, set *github.GistCommentSet) error {
	doc, err := render.NewDocument(set)
	if err != nil {
		return err
	}

	writer, err := output.Open(outputFile, a.stdout)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.Write(doc); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	a.logger.Debug("wrote digest", "sections", doc.Sections, "documents", writer.Count(), "bytes", writer.Bytes())
	if outputFile != "" && outputFile != "-" {
		fmt.Fprintf(a.stderr, "Wrote %d gists with comments to %s (%d bytes)\n", doc.Sections, outputFile, writer.Bytes())
	}
	return nil
}

// newCacheRef checksums the written cache files. Paths are recorded as
// absolute so render can match them from any working directory.
func newCacheRef(paths cache.Paths) (*metadata.CacheRef, error) {
	gistsFile, err := filepath.Abs(paths.Gists)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", paths.Gists, err)
	}
	commentsFile, err := filepath.Abs(paths.Comments)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", paths.Comments, err)
	}

	gistsSum, err := cache.Checksum(paths.Gists)
	if err != nil {
		return nil, err
	}
	commentsSum, err := cache.Checksum(paths.Comments)
	if err != nil {
		return nil, err
	}
	return &metadata.CacheRef{
		GistsFile:      gistsFile,
		CommentsFile:   commentsFile,
		GistsSHA256:    gistsSum,
		CommentsSHA256: commentsSum,
	}, nil
}

// saveFetchMetadata records the fetch next to the cache. Failures are logged;
// the digest and cache are already written at this point.
func saveFetchMetadata(a *app, tracker *metadata.Tracker, dir string, params metadata.FetchParams, cacheRef *metadata.CacheRef) {
	var previous *metadata.FetchRef
	last, err := metadata.LoadLatestMetadata(dir, params.Username)
	if err != nil {
		a.logger.Warn("failed to read previous fetch metadata", logging.Path(dir), logging.Err(err))
	} else if last != nil {
		previous = last.Ref()
	}

	md := tracker.GenerateMetadata(version.Version, params, cacheRef, previous)
	path, err := metadata.SaveMetadata(md, dir)
	if err != nil {
		a.logger.Warn("failed to save fetch metadata", logging.Path(dir), logging.Err(err))
		return
	}
	a.logger.Debug("saved fetch metadata", logging.Path(path), "fetch_id", md.FetchID)
}

func writeMetrics(a *app, path string, recorder *metrics.Recorder) {
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		a.logger.Warn("failed to write metrics", logging.Path(path), logging.Err(err))
	}
}

// startTracing installs a tracer provider exporting to path. The returned
// func flushes the spans and closes the file.
func startTracing(ctx context.Context, path string) (func(*app), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	provider, err := tracing.Setup(ctx, f, version.Version)
	if err != nil {
		f.Close()
		return nil, err
	}

	return func(a *app) {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to write traces", logging.Path(path), logging.Err(err))
		}
		if err := f.Close(); err != nil {
			a.logger.Warn("failed to close trace file", logging.Path(path), logging.Err(err))
		}
	}, nil
}
