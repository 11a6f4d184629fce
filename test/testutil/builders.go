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

package testutil

import "fmt"

// GistBuilder helps construct gist documents shaped like REST API responses.
type GistBuilder struct {
	id          string
	description interface{}
	owner       string
	public      bool
	files       []string
}

// NewGistBuilder creates a builder for a public gist with the given ID.
func NewGistBuilder(id string) *GistBuilder {
	return &GistBuilder{
		id:          id,
		description: "Gist " + id,
		owner:       "octocat",
		public:      true,
		files:       []string{"main.go"},
	}
}

// WithDescription sets the gist description.
func (b *GistBuilder) WithDescription(description string) *GistBuilder {
	b.description = description
	return b
}

// WithNullDescription makes the description a JSON null, as GitHub sends for undescribed gists.
func (b *GistBuilder) WithNullDescription() *GistBuilder {
	b.description = nil
	return b
}

// WithOwner sets the owner login.
func (b *GistBuilder) WithOwner(login string) *GistBuilder {
	b.owner = login
	return b
}

// WithFiles sets the gist file names.
func (b *GistBuilder) WithFiles(files ...string) *GistBuilder {
	b.files = files
	return b
}

// Secret marks the gist as secret.
func (b *GistBuilder) Secret() *GistBuilder {
	b.public = false
	return b
}

// HTMLURL returns the html_url the built gist will carry.
func (b *GistBuilder) HTMLURL() string {
	return fmt.Sprintf("https://gist.github.com/%s/%s", b.owner, b.id)
}

// Build creates the gist document.
func (b *GistBuilder) Build() map[string]interface{} {
	files := make(map[string]interface{}, len(b.files))
	for _, name := range b.files {
		files[name] = map[string]interface{}{
			"filename": name,
			"type":     "text/plain",
			"raw_url":  fmt.Sprintf("https://gist.githubusercontent.com/%s/%s/raw/%s", b.owner, b.id, name),
			"size":     42,
		}
	}

	return map[string]interface{}{
		"url":          "https://api.github.com/gists/" + b.id,
		"id":           b.id,
		"node_id":      "G_" + b.id,
		"html_url":     b.HTMLURL(),
		"description":  b.description,
		"public":       b.public,
		"files":        files,
		"comments":     0,
		"comments_url": "https://api.github.com/gists/" + b.id + "/comments",
		"created_at":   "2020-01-01T00:00:00Z",
		"updated_at":   "2021-01-01T00:00:00Z",
		"owner": map[string]interface{}{
			"login": b.owner,
			"id":    1,
			"type":  "User",
		},
	}
}

// NewComment creates a gist comment document.
func NewComment(id int, login, createdAt, body string) map[string]interface{} {
	return map[string]interface{}{
		"id":                 id,
		"node_id":            fmt.Sprintf("GC_%d", id),
		"url":                fmt.Sprintf("https://api.github.com/gists/x/comments/%d", id),
		"body":               body,
		"created_at":         createdAt,
		"updated_at":         createdAt,
		"author_association": "NONE",
		"user": map[string]interface{}{
			"login": login,
			"id":    id + 1000,
			"type":  "User",
		},
	}
}
