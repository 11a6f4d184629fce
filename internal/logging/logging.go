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

// Package logging provides structured logging utilities for gist-comments,
// built on the standard library's slog package.
//
// Attribute helpers keep key names consistent across packages:
//
//	logger.Debug("fetched page", logging.URL(u), logging.Page(2))
//
// Tokens are never logged directly; use SanitizeToken.
package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyUsername = "username"
	KeyGistID   = "gist_id"
	KeyURL      = "url"
	KeyPage     = "page"
	KeyPath     = "path"
	KeyError    = "error"
	KeyToken    = "token"
)

// New returns a text logger writing to w. Verbose enables debug output;
// otherwise only warnings and errors are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithUsername returns a logger with the username attribute set.
func WithUsername(logger *slog.Logger, username string) *slog.Logger {
	return logger.With(slog.String(KeyUsername, username))
}

// Username returns a slog attribute for a GitHub login.
func Username(username string) slog.Attr {
	return slog.String(KeyUsername, username)
}

// GistID returns a slog attribute for a gist ID.
func GistID(id string) slog.Attr {
	return slog.String(KeyGistID, id)
}

// URL returns a slog attribute for a request URL.
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// Page returns a slog attribute for a 1-based page number.
func Page(n int) slog.Attr {
	return slog.Int(KeyPage, n)
}

// Path returns a slog attribute for a filesystem path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a token for logging.
// It reveals only the length, never any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Token returns a slog attribute carrying the sanitized token.
func Token(token string) slog.Attr {
	return slog.String(KeyToken, SanitizeToken(token))
}
