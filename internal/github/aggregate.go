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
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/sirseerhq/gist-comments/internal/logging"
	"github.com/sirseerhq/gist-comments/internal/tracing"
)

// AggregateOptions configures GetGistsAndComments.
type AggregateOptions struct {
	// Concurrency caps simultaneous comment fetches. Zero means one
	// goroutine per gist with no cap.
	Concurrency int

	// Progress receives the "Fetched ..." count lines. Nil discards them.
	Progress io.Writer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnComments, when set, is called from the fetching goroutine after each
	// gist's comments arrive. It must be safe for concurrent use.
	OnComments func(gistID string, comments []Comment)
}

// GetGistsAndComments fetches all gists of username and then, concurrently,
// the comments of every gist. Comments[i] belongs to Gists[i]. The first
// failing fetch cancels the others and fails the whole call.
func GetGistsAndComments(ctx context.Context, client Client, username string, opts AggregateOptions) (set *GistCommentSet, err error) {
	ctx, span := tracing.StartSpan(ctx, "gists.aggregate", attribute.String(tracing.AttrUsername, username))
	defer func() { tracing.End(span, err) }()

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gists, err := listGists(ctx, client, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gists of %s: %w", username, err)
	}
	fmt.Fprintf(progress, "Fetched gists: %d\n", len(gists))

	comments := make([][]Comment, len(gists))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, gist := range gists {
		g.Go(func() error {
			cs, err := listComments(gctx, client, gist.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch comments of gist %s: %w", gist.ID, err)
			}
			if cs == nil {
				cs = []Comment{}
			}
			comments[i] = cs
			if opts.OnComments != nil {
				opts.OnComments(gist.ID, cs)
			}
			logger.Debug("fetched comments", logging.GistID(gist.ID), slog.Int("comments", len(cs)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "Fetched comments: %d\n", len(comments))
	span.SetAttributes(attribute.Int(tracing.AttrGists, len(gists)))

	return &GistCommentSet{Gists: gists, Comments: comments}, nil
}

func listGists(ctx context.Context, client Client, username string) (gists []Gist, err error) {
	ctx, span := tracing.StartSpan(ctx, "gists.list", attribute.String(tracing.AttrUsername, username))
	defer func() { tracing.End(span, err) }()

	gists, err = client.ListGists(ctx, username)
	span.SetAttributes(attribute.Int(tracing.AttrGists, len(gists)))
	return gists, err
}

func listComments(ctx context.Context, client Client, gistID string) (comments []Comment, err error) {
	ctx, span := tracing.StartSpan(ctx, "gists.comments", attribute.String(tracing.AttrGistID, gistID))
	defer func() { tracing.End(span, err) }()

	comments, err = client.ListComments(ctx, gistID)
	span.SetAttributes(attribute.Int(tracing.AttrComments, len(comments)))
	return comments, err
}
