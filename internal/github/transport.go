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
	"fmt"
	"net/http"
	"time"

	"github.com/sirseerhq/gist-comments/internal/giterror"
)

const (
	defaultInitialBackoff = time.Second
	maxBackoff            = 30 * time.Second
)

// retryTransport adds exponential backoff retry logic for transient failures.
type retryTransport struct {
	base           http.RoundTripper
	maxRetries     int
	initialBackoff time.Duration
	inspector      giterror.Inspector
}

// newRetryTransport creates a transport that retries up to maxRetries times.
func newRetryTransport(base http.RoundTripper, maxRetries int) *retryTransport {
	return &retryTransport{
		base:           base,
		maxRetries:     maxRetries,
		initialBackoff: defaultInitialBackoff,
		inspector:      giterror.NewInspector(),
	}
}

// RoundTrip implements http.RoundTripper with retry logic.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	backoff := t.initialBackoff
	attempts := t.maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		// Clone request for each attempt
		resp, err := t.base.RoundTrip(req.Clone(req.Context()))

		if err == nil && !isRetryableStatusCode(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			if !t.inspector.IsRetryable(err) {
				return nil, err
			}
			lastErr = fmt.Errorf("attempt %d/%d: %w", attempt+1, attempts, err)
		} else {
			// Out of attempts: hand the error response to the caller
			if attempt == attempts-1 {
				return resp, nil
			}
			lastErr = fmt.Errorf("attempt %d/%d: received status %d", attempt+1, attempts, resp.StatusCode)
			resp.Body.Close()
		}

		// Don't wait after the last attempt
		if attempt < attempts-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}
	}

	return nil, lastErr
}

// isRetryableStatusCode checks if an HTTP status code should trigger a retry.
func isRetryableStatusCode(code int) bool {
	switch code {
	case http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
