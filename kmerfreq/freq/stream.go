// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"

	"github.com/biogo/kmertools/kmerfreq/kmer"
)

// Written holds the outcome of a call to Stream.
type Written struct {
	Lines     int64 // Lines written.
	Ambiguous int64 // K-mers dropped for containing the ambiguity letter.
	Skipped   int64 // K-mers dropped for failing to decode.
}

// Stream writes one line for each k-mer in c that does not contain the
// ambiguity letter:
//
//	<kmer>\t<reverse complement>\t<count>
//
// Shards of c are distributed over at most workers goroutines and each
// line is written to w with a single locked Write, so lines from different
// goroutines never interleave. K-mers that are not valid text are reported
// to skip, if it is not nil, and are not written. Stream returns the first
// write error. c must not be modified during the call.
func Stream(w io.Writer, c *Canonical, workers int, skip func(kmer []byte, err error)) (Written, error) {
	if workers < 1 {
		workers = 1
	}
	lw := NewLineWriter(w)
	var (
		mu              sync.Mutex
		lines, amb, bad int64
	)
	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(workers)
	for i := range c.shards {
		i := i
		p.Go(func() error {
			var (
				buf []byte
				err error
			)
			c.doShard(i, func(km []byte, count uint64) {
				switch {
				case err != nil:
					return
				case kmer.HasAmbiguous(km):
					atomic.AddInt64(&amb, 1)
					return
				case !utf8.Valid(km):
					atomic.AddInt64(&bad, 1)
					if skip != nil {
						mu.Lock()
						skip(km, fmt.Errorf("%w: %q", ErrDecode, km))
						mu.Unlock()
					}
					return
				}
				buf = AppendLine(buf[:0], km, kmer.RevComp(km), count)
				if _, err = lw.WriteLine(buf); err == nil {
					atomic.AddInt64(&lines, 1)
				}
			})
			return err
		})
	}
	err := p.Wait()
	return Written{Lines: lines, Ambiguous: amb, Skipped: bad}, err
}
