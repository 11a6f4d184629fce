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

package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	apperrors "github.com/sirseerhq/gist-comments/internal/errors"
	"github.com/sirseerhq/gist-comments/internal/github"
)

// Render builds the Markdown document for gists and their parallel comment
// lists. It fails when the two slices differ in length.
func Render(gists []github.Gist, comments [][]github.Comment) (string, error) {
	order, err := Order(gists, comments)
	if err != nil {
		return "", err
	}

	sections := make([]string, 0, len(order))
	for _, i := range order {
		if len(comments[i]) == 0 {
			continue
		}
		sections = append(sections, section(gists[i], comments[i]))
	}

	return strings.Join(sections, "\n\n"), nil
}

// Document is a rendered digest ready to be written out.
type Document struct {
	Markdown string
	// Sections is the number of gists that produced a section.
	Sections int
}

// NewDocument renders set into a Document.
func NewDocument(set *github.GistCommentSet) (*Document, error) {
	md, err := Render(set.Gists, set.Comments)
	if err != nil {
		return nil, err
	}

	n := 0
	for _, cs := range set.Comments {
		if len(cs) > 0 {
			n++
		}
	}
	return &Document{Markdown: md, Sections: n}, nil
}

// WriteTo writes the Markdown followed by a newline.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Markdown+"\n")
	return int64(n), err
}

// Order returns gist indices sorted by newest comment, most recent first.
// Gists without comments sort last; ties keep fetch order.
func Order(gists []github.Gist, comments [][]github.Comment) ([]int, error) {
	if len(gists) != len(comments) {
		return nil, fmt.Errorf("%d gists, %d comment lists: %w", len(gists), len(comments), apperrors.ErrMismatchedCounts)
	}

	newest := make([]time.Time, len(comments))
	hasComments := make([]bool, len(comments))
	for i, cs := range comments {
		newest[i], hasComments[i] = Newest(cs)
	}

	order := make([]int, len(gists))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if hasComments[ia] != hasComments[ib] {
			return hasComments[ia]
		}
		return newest[ia].After(newest[ib])
	})

	return order, nil
}

// Newest returns the latest comment time and whether there were any
// comments. Unparseable timestamps count as the zero time.
func Newest(comments []github.Comment) (time.Time, bool) {
	var latest time.Time
	for i, c := range comments {
		t, err := c.Time()
		if err != nil {
			t = time.Time{}
		}
		if i == 0 || t.After(latest) {
			latest = t
		}
	}
	return latest, len(comments) > 0
}

func section(gist github.Gist, comments []github.Comment) string {
	blocks := make([]string, 0, len(comments)+1)
	blocks = append(blocks, fmt.Sprintf("# [%s](%s)", gist.Description, gist.HTMLURL))
	for _, c := range comments {
		blocks = append(blocks, fmt.Sprintf("## %s (%s)\n%s", c.User.Login, c.CreatedAt, strings.TrimSpace(c.Body)))
	}
	return strings.Join(blocks, "\n\n")
}
