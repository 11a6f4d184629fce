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

import "context"

// Client defines the interface for reading gists and their comments.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListGists retrieves every gist of the user, following pagination
	// until the last page. Items keep the order the API returned them in.
	ListGists(ctx context.Context, username string) ([]Gist, error)

	// ListComments retrieves every comment of a gist in API order.
	ListComments(ctx context.Context, gistID string) ([]Comment, error)
}
