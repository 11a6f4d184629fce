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

// Package github provides a client for reading gists and gist comments from
// GitHub's REST API. Collections are fetched page by page, following the
// rel="next" entry of the Link response header until the last page.
//
// The package includes:
//   - A Client interface for listing gists and gist comments
//   - A REST implementation built on go-github request plumbing
//   - GetGistsAndComments, which fans out one comment fetch per gist
//   - Mock client for testing
//   - Gist and Comment types that round-trip the upstream JSON unchanged
//
// Basic usage:
//
//	client := github.NewRESTClient(github.Options{Token: token})
//	set, err := github.GetGistsAndComments(ctx, client, "octocat", github.AggregateOptions{})
//	if err != nil {
//	    // Handle error
//	}
//	for i, gist := range set.Gists {
//	    // set.Comments[i] holds the comments of gist
//	}
package github
