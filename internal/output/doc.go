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

// Package output writes rendered Markdown digests to stdout or to a file.
//
// The primary type is Writer, which serializes writes of any io.WriterTo
// (typically a *render.Document) to an io.Writer or file and counts what it
// wrote.
//
// Example usage:
//
//	w, err := output.Open(path, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(doc); err != nil {
//	    return err
//	}
package output
