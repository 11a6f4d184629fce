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
	"encoding/json"
	"time"
)

// Gist is a GitHub gist as returned by the REST API. Only the fields needed
// for rendering are decoded; the full upstream document is kept and written
// back unchanged when the gist is marshaled.
type Gist struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`

	raw json.RawMessage
}

// User is the author of a gist comment.
type User struct {
	Login string `json:"login"`
}

// Comment is a comment on a gist. CreatedAt holds the timestamp exactly as
// GitHub sent it; use Time to order comments.
type Comment struct {
	User      User   `json:"user"`
	CreatedAt string `json:"created_at"`
	Body      string `json:"body"`

	raw json.RawMessage
}

// GistCommentSet pairs gists with their comments. Comments[i] holds the
// comments of Gists[i]; both slices always have the same length.
type GistCommentSet struct {
	Gists    []Gist
	Comments [][]Comment
}

// gistFields and commentFields break the Marshal/Unmarshal recursion.
type (
	gistFields    Gist
	commentFields Comment
)

// UnmarshalJSON decodes the typed fields and retains the raw document.
func (g *Gist) UnmarshalJSON(data []byte) error {
	var f gistFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*g = Gist(f)
	g.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the retained upstream document, or the typed fields for
// gists built in code.
func (g Gist) MarshalJSON() ([]byte, error) {
	if len(g.raw) > 0 {
		return g.raw, nil
	}
	return json.Marshal(gistFields(g))
}

// UnmarshalJSON decodes the typed fields and retains the raw document.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var f commentFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Comment(f)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the retained upstream document, or the typed fields for
// comments built in code.
func (c Comment) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	return json.Marshal(commentFields(c))
}

// timestampLayouts are tried in order when parsing comment timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses CreatedAt. GitHub sends RFC 3339; date-only and zone-less
// values are accepted as UTC.
func (c Comment) Time() (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, c.CreatedAt)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// CommentCount returns the total number of comments across all gists.
func (s *GistCommentSet) CommentCount() int {
	n := 0
	for _, cs := range s.Comments {
		n += len(cs)
	}
	return n
}
