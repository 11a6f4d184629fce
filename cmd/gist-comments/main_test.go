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
	"errors"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
)

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", fmt.Errorf("%w: missing USERNAME", apperrors.ErrUsage), 1},
		{"general", errors.New("boom"), 1},
		{"invalid token", fmt.Errorf("fetch: %w", apperrors.ErrInvalidToken), 2},
		{"user not found", apperrors.ErrUserNotFound, 2},
		{"rate limit", fmt.Errorf("wrapped twice: %w", fmt.Errorf("inner: %w", apperrors.ErrRateLimit)), 2},
		{"network", apperrors.ErrNetworkFailure, 3},
		{"invalid cache", fmt.Errorf("load: %w", apperrors.ErrInvalidCache), 4},
		{"mismatched counts", apperrors.ErrMismatchedCounts, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToExitCode(tt.err); got != tt.want {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantUsage string
	}{
		{"no command", nil, "gist-comments [flags]"},
		{"unknown command", []string{"frobnicate"}, "gist-comments [flags]"},
		{"fetch without username", []string{"fetch"}, "fetch USERNAME [TOKEN]"},
		{"fetch with too many arguments", []string{"fetch", "alice", "tok", "extra"}, "fetch USERNAME [TOKEN]"},
		{"render with one file", []string{"render", "gists.json"}, "render [GISTS_FILE COMMENTS_FILE]"},
		{"unknown flag", []string{"fetch", "alice", "--bogus"}, "fetch USERNAME [TOKEN]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)

			stdout, stderr, code := runCLI(t, tt.args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if stdout != "" {
				t.Errorf("stdout = %q, want empty", stdout)
			}
			if !strings.Contains(stderr, "Error: invalid usage") {
				t.Errorf("stderr missing error line:\n%s", stderr)
			}
			if !strings.Contains(stderr, "Usage:") || !strings.Contains(stderr, tt.wantUsage) {
				t.Errorf("stderr missing usage %q:\n%s", tt.wantUsage, stderr)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	setupEnv(t)

	stdout, _, code := runCLI(t, "--version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "dev") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestRun_InvalidConfigFile(t *testing.T) {
	setupEnv(t)

	_, stderr, code := runCLI(t, "--config", "does-not-exist.yaml", "render")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "failed to load config file") {
		t.Errorf("stderr = %q", stderr)
	}
}
