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

// Package cache persists fetched gists and comments as two JSON files so a
// later run can render them again without touching the network.
//
// gists.json holds the array of gist documents exactly as GitHub returned
// them. comments.json holds one array of comment documents per gist, in the
// same order. Both files are written atomically using a write-to-temp, sync
// and rename sequence so an interrupted fetch never leaves a half-written
// cache behind.
//
// Example usage:
//
//	paths := cache.NewPaths(".", cache.DefaultGistsFile, cache.DefaultCommentsFile)
//	if err := cache.Save(paths, set); err != nil {
//	    return err
//	}
//	set, err := cache.Load(paths)
package cache
