// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package freq provides concurrent aggregation of k-mer frequencies over
// a collection of sequence records.
//
// Records are retained in an Arena for the lifetime of a run. Tables
// never copy k-mer bytes; they hold Refs, record and offset pairs that
// resolve to slices of the arena's sequences. One Table is built per
// record, the largest is chosen as the seed of a sharded Canonical table
// and the remaining tables are merged into it in parallel. The finished
// Canonical table is streamed as tab-separated lines by Stream.
package freq

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrKmerLength    = errors.New("freq: k-mer length out of range")
	ErrRecordTooLong = errors.New("freq: record too long")
	ErrNoTables      = errors.New("freq: no tables")
	ErrOverflow      = errors.New("freq: counter overflow")
	ErrDecode        = errors.New("freq: k-mer is not valid text")
	ErrKmerMismatch  = errors.New("freq: table k-mer length mismatch")
	ErrArenaMismatch = errors.New("freq: table from a different arena")
)

// Record is a named sequence held by an Arena.
type Record struct {
	ID  string
	Seq []byte
}

// Ref refers to the k-mer starting at Off in record Rec of an Arena.
type Ref struct {
	Rec uint32
	Off uint32
}

// Arena owns the records of a run. Records must not be modified after
// they are added.
type Arena struct {
	recs []Record
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{} }

// Add appends a record to the arena and returns its index.
func (a *Arena) Add(id string, seq []byte) (int, error) {
	if uint64(len(seq)) > math.MaxUint32 || uint64(len(a.recs)) == math.MaxUint32 {
		return 0, fmt.Errorf("%w: %q is %d bases", ErrRecordTooLong, id, len(seq))
	}
	a.recs = append(a.recs, Record{ID: id, Seq: seq})
	return len(a.recs) - 1, nil
}

// Len returns the number of records in the arena.
func (a *Arena) Len() int { return len(a.recs) }

// Record returns the ith record.
func (a *Arena) Record(i int) Record { return a.recs[i] }

// MinLen returns the length of the shortest record, or zero if the arena
// is empty.
func (a *Arena) MinLen() int {
	if len(a.recs) == 0 {
		return 0
	}
	min := len(a.recs[0].Seq)
	for _, r := range a.recs[1:] {
		if len(r.Seq) < min {
			min = len(r.Seq)
		}
	}
	return min
}

// Kmer returns the k bytes referred to by r. The returned slice aliases
// the record's sequence.
func (a *Arena) Kmer(r Ref, k int) []byte {
	s := a.recs[r.Rec].Seq
	return s[r.Off : int(r.Off)+k : int(r.Off)+k]
}
