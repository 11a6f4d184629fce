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

// Package render turns gists and their comments into a Markdown digest.
//
// Gists are ordered by their newest comment, most recent first, so rerunning
// after a fresh fetch shows new activity at the top. Gists without comments
// are left out. Each gist becomes one section:
//
//	# [description](html_url)
//
//	## login (created_at)
//	comment body
//
// Comments inside a section keep the order the API returned them in.
package render
