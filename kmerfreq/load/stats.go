// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"sort"

	"github.com/biogo/kmertools/kmerfreq/freq"
)

// Stats holds assembly statistics of a set of records. All lengths are
// in base pairs.
type Stats struct {
	Seqs int
	Size int
	Min  int
	Max  int
	Avg  float64
	N50  int
}

// StatsOf returns the assembly statistics of the records in a.
func StatsOf(a *freq.Arena) Stats {
	var b Stats
	if a.Len() == 0 {
		return b
	}
	seqlens := make([]int, a.Len())
	b.Min = len(a.Record(0).Seq)
	for i := range seqlens {
		l := len(a.Record(i).Seq)
		seqlens[i] = l
		b.Seqs++
		b.Size += l
		if l < b.Min {
			b.Min = l
		}
		if l > b.Max {
			b.Max = l
		}
	}

	// Sort in descending order of sequence length.
	sort.Sort(sort.Reverse(sort.IntSlice(seqlens)))
	// csum stores the cumulative sequence length.
	for i, csum := 0, 0; i < len(seqlens); i++ {
		csum += seqlens[i]
		if 2*csum >= b.Size {
			b.N50 = seqlens[i]
			break
		}
	}
	b.Avg = float64(b.Size) / float64(b.Seqs)
	return b
}
