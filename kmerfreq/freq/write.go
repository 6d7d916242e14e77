// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"io"
	"strconv"
	"sync"
)

// LineWriter serialises whole-line writes from concurrent goroutines to
// an underlying writer.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter returns a LineWriter writing to w.
func NewLineWriter(w io.Writer) *LineWriter { return &LineWriter{w: w} }

// WriteLine writes line to the underlying writer with a single call to
// Write while holding the lock.
func (lw *LineWriter) WriteLine(line []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(line)
}

// AppendLine appends the tab-separated kmer, rc and count fields and a
// newline to dst.
func AppendLine(dst, kmer, rc []byte, count uint64) []byte {
	dst = append(dst, kmer...)
	dst = append(dst, '\t')
	dst = append(dst, rc...)
	dst = append(dst, '\t')
	dst = strconv.AppendUint(dst, count, 10)
	return append(dst, '\n')
}
