// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"bytes"
	"fmt"
	"math/bits"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultShards is the default number of shards in a Canonical table.
	DefaultShards = 256

	// MaxShards is the largest number of shards in a Canonical table.
	MaxShards = 1 << 16
)

type shard struct {
	mu      sync.Mutex
	buckets map[uint64][]Entry
	n       int
}

// add folds e into the shard. It must be called with s.mu held.
func (s *shard) add(a *Arena, k int, e Entry) error {
	b := s.buckets[e.Hash]
	km := a.Kmer(e.Ref, k)
	for i := range b {
		if !bytes.Equal(a.Kmer(b[i].Ref, k), km) {
			continue
		}
		sum, carry := bits.Add64(b[i].Count, e.Count, 0)
		if carry != 0 {
			return fmt.Errorf("%w: %q", ErrOverflow, km)
		}
		b[i].Count = sum
		return nil
	}
	s.buckets[e.Hash] = append(b, e)
	s.n++
	return nil
}

// Canonical is a k-mer frequency table that is safe for concurrent
// merging. Each shard is guarded by its own lock.
type Canonical struct {
	arena  *Arena
	k      int
	mask   uint64
	shards []shard
}

// NewCanonical returns a Canonical table holding the entries of seed and
// split into at least the given number of shards. The shard count is
// rounded up to a power of two and is at most MaxShards.
func NewCanonical(a *Arena, k int, seed *Table, shards int) (*Canonical, error) {
	if seed != nil {
		if seed.arena != a {
			return nil, ErrArenaMismatch
		}
		if seed.k != k {
			return nil, fmt.Errorf("%w: seed has k=%d, want %d", ErrKmerMismatch, seed.k, k)
		}
	}
	n := 1
	for n < shards && n < MaxShards {
		n <<= 1
	}
	c := &Canonical{
		arena:  a,
		k:      k,
		mask:   uint64(n - 1),
		shards: make([]shard, n),
	}
	var hint int
	if seed != nil {
		hint = seed.Len() / n
	}
	for i := range c.shards {
		c.shards[i].buckets = make(map[uint64][]Entry, hint)
	}
	if seed != nil {
		for _, e := range seed.Entries {
			// c is not yet shared.
			err := c.shardOf(e.Hash).add(a, k, e)
			if err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Canonical) shardOf(h uint64) *shard { return &c.shards[h&c.mask] }

// K returns the k-mer length of the table.
func (c *Canonical) K() int { return c.k }

// Fold adds the counts of t into c. Fold is safe to call concurrently.
func (c *Canonical) Fold(t *Table) error {
	if t.arena != c.arena {
		return ErrArenaMismatch
	}
	if t.k != c.k {
		return fmt.Errorf("%w: table for record %d has k=%d, want %d", ErrKmerMismatch, t.rec, t.k, c.k)
	}
	for _, e := range t.Entries {
		s := c.shardOf(e.Hash)
		s.mu.Lock()
		err := s.add(c.arena, c.k, e)
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge folds each of tables into c, running at most workers folds
// concurrently. The result does not depend on the order of tables or on
// the number of workers. Merge returns the first error encountered.
func (c *Canonical) Merge(tables []*Table, workers int) error {
	if workers < 1 {
		workers = 1
	}
	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(workers)
	for _, t := range tables {
		t := t
		p.Go(func() error { return c.Fold(t) })
	}
	return p.Wait()
}

// Aggregate merges tables into a single Canonical table seeded with the
// largest of them.
func Aggregate(a *Arena, tables []*Table, workers, shards int) (*Canonical, error) {
	i, err := SelectSeed(tables)
	if err != nil {
		return nil, err
	}
	seed := tables[i]
	c, err := NewCanonical(a, seed.k, seed, shards)
	if err != nil {
		return nil, err
	}
	rest := make([]*Table, 0, len(tables)-1)
	rest = append(rest, tables[:i]...)
	rest = append(rest, tables[i+1:]...)
	return c, c.Merge(rest, workers)
}

// Len returns the number of distinct k-mers in c.
func (c *Canonical) Len() int {
	var n int
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += s.n
		s.mu.Unlock()
	}
	return n
}

// Count returns the count for kmer and whether it is present in c.
func (c *Canonical) Count(kmer []byte) (uint64, bool) {
	if len(kmer) != c.k {
		return 0, false
	}
	h := xxhash.Sum64(kmer)
	s := c.shardOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.buckets[h] {
		if bytes.Equal(c.arena.Kmer(e.Ref, c.k), kmer) {
			return e.Count, true
		}
	}
	return 0, false
}

// Do calls fn for every k-mer in c. It must not be called concurrently
// with Fold or Merge.
func (c *Canonical) Do(fn func(kmer []byte, count uint64)) {
	for i := range c.shards {
		c.doShard(i, fn)
	}
}

func (c *Canonical) doShard(i int, fn func(kmer []byte, count uint64)) {
	for _, b := range c.shards[i].buckets {
		for _, e := range b {
			fn(c.arena.Kmer(e.Ref, c.k), e.Count)
		}
	}
}

// Counts returns a copy of the contents of c keyed by k-mer text.
func (c *Canonical) Counts() map[string]uint64 {
	m := make(map[string]uint64)
	c.Do(func(kmer []byte, count uint64) { m[string(kmer)] = count })
	return m
}
