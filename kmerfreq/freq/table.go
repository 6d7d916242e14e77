// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/biogo/kmertools/kmerfreq/kmer"
)

// Entry is a k-mer count held by a table.
type Entry struct {
	Ref   Ref
	Hash  uint64 // xxhash64 of the k-mer bytes.
	Count uint64
}

// Table is the k-mer frequency table of a single record.
type Table struct {
	arena   *Arena
	rec     int
	k       int
	Entries []Entry
}

// Len returns the number of distinct k-mers in the table.
func (t *Table) Len() int { return len(t.Entries) }

// Record returns the index of the record the table was built from.
func (t *Table) Record() int { return t.rec }

// K returns the k-mer length of the table.
func (t *Table) K() int { return t.k }

// Do calls fn for each k-mer in the table.
func (t *Table) Do(fn func(kmer []byte, count uint64)) {
	for _, e := range t.Entries {
		fn(t.arena.Kmer(e.Ref, t.k), e.Count)
	}
}

// Build returns the frequency table of the k-mers in record rec of a. It
// returns an error wrapping ErrKmerLength if k is less than one or greater
// than the length of the record.
func Build(a *Arena, rec, k int) (*Table, error) {
	r := a.Record(rec)
	if k < 1 || k > len(r.Seq) {
		return nil, fmt.Errorf("%w: k=%d for %q of length %d", ErrKmerLength, k, r.ID, len(r.Seq))
	}

	t := &Table{arena: a, rec: rec, k: k}
	err := kmer.Enumerate(r.Seq, k, func(km []byte, pos []int) {
		t.Entries = append(t.Entries, Entry{
			Ref:   Ref{Rec: uint32(rec), Off: uint32(pos[0])},
			Hash:  xxhash.Sum64(km),
			Count: uint64(len(pos)),
		})
	})
	if errors.Is(err, kmer.ErrLength) {
		return nil, fmt.Errorf("%w: k=%d for %q", ErrKmerLength, k, r.ID)
	}
	return t, err
}

// BuildAll builds the tables of every record in a using at most workers
// concurrent builds. The ith table corresponds to the ith record.
func BuildAll(a *Arena, k, workers int) ([]*Table, error) {
	if workers < 1 {
		workers = 1
	}
	tables := make([]*Table, a.Len())
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range tables {
		i := i
		g.Go(func() error {
			t, err := Build(a, i, k)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
