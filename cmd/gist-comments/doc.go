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

// Package main implements the gist-comments command-line interface.
// This tool fetches a GitHub user's gists and the comments on them, keeps
// a local JSON cache of what it fetched, and prints the comments as one
// Markdown digest with the most recently discussed gist first.
//
// The CLI supports:
//   - Live fetches of public gists, or of private ones with a token
//   - Replaying the cache without touching the network
//   - Output to stdout or a file
//   - A YAML config file with environment variable overrides
//   - Prometheus metrics written in the textfile collector format
//
// Usage:
//
//	gist-comments fetch USERNAME [TOKEN] [flags]
//	gist-comments render [GISTS_FILE COMMENTS_FILE] [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	gist-comments fetch octocat --output digest.md
//	gist-comments render
//
// Exit codes:
//   - 0: Success
//   - 1: Usage or general error
//   - 2: Authentication, not found or rate limit error
//   - 3: Network error
//   - 4: Invalid cache file or mismatched gist/comment counts
package main
