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

package output

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer writes documents to a file or io.Writer.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	count     int
	bytes     int64
	closeFunc func() error
}

// NewWriter creates a writer on w. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		output: w,
	}
}

// NewFileWriter creates or truncates filename and writes to it.
// The caller must call Close() when done to ensure the file is properly closed.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		output:    file,
		closeFunc: file.Close,
	}, nil
}

// Open returns a file writer for path, or a writer on stdout when path is
// empty or "-".
func Open(path string, stdout io.Writer) (*Writer, error) {
	if path == "" || path == "-" {
		return NewWriter(stdout), nil
	}
	return NewFileWriter(path)
}

// Write writes doc in full.
func (w *Writer) Write(doc io.WriterTo) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := doc.WriteTo(w.output)
	w.bytes += n
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of documents written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Bytes returns the number of bytes written.
func (w *Writer) Bytes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// Close closes the underlying writer if it's a file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		err := w.closeFunc()
		w.closeFunc = nil
		return err
	}
	return nil
}
