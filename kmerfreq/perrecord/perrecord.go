// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perrecord writes unmerged k-mer frequency tables, one file per
// sequence record.
package perrecord

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/biogo/store/llrb"
	"golang.org/x/sync/errgroup"

	"github.com/biogo/kmertools/kmerfreq/freq"
	"github.com/biogo/kmertools/kmerfreq/kmer"
)

// Ext is the file name extension of per-record tables.
const Ext = ".tsv"

type line struct {
	kmer  []byte
	count uint64
}

func (l line) Compare(c llrb.Comparable) int { return bytes.Compare(l.kmer, c.(line).kmer) }

// Names returns the output file base names for the records of a. Record
// identifiers are stripped of path separators and white space, and
// identifiers that are already in use get the record index as a suffix,
// incremented until the name is unique.
func Names(a *freq.Arena) []string {
	names := make([]string, a.Len())
	used := make(map[string]bool)
	for i := range names {
		id := strings.Map(func(r rune) rune {
			if r == '/' || r == filepath.Separator || unicode.IsSpace(r) {
				return '_'
			}
			return r
		}, a.Record(i).ID)
		if id == "" || id == "." || id == ".." {
			id = fmt.Sprintf("record%d", i)
		}
		name := id
		for n := i; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", id, n)
		}
		used[name] = true
		names[i] = name + Ext
	}
	return names
}

// Write builds the k-mer table of each record of a and writes it to its
// own file in dir, using at most workers concurrent builds. Each file holds
// one line per k-mer without the ambiguity letter, sorted by k-mer:
//
//	<kmer>\t<reverse complement>\t<count>
//
// dir must exist.
func Write(dir string, a *freq.Arena, k, workers int) error {
	if workers < 1 {
		workers = 1
	}
	names := Names(a)
	var g errgroup.Group
	g.SetLimit(workers)
	for i, name := range names {
		i, path := i, filepath.Join(dir, name)
		g.Go(func() error {
			t, err := freq.Build(a, i, k)
			if err != nil {
				return err
			}
			return writeTable(path, t)
		})
	}
	return g.Wait()
}

func writeTable(path string, t *freq.Table) (err error) {
	tree := &llrb.Tree{}
	t.Do(func(km []byte, count uint64) {
		if !kmer.HasAmbiguous(km) {
			tree.Insert(line{kmer: km, count: count})
		}
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	var buf []byte
	tree.Do(func(c llrb.Comparable) (done bool) {
		l := c.(line)
		buf = freq.AppendLine(buf[:0], l.kmer, kmer.RevComp(l.kmer), l.count)
		_, err = w.Write(buf)
		return err != nil
	})
	if err != nil {
		return fmt.Errorf("perrecord: %s: %w", path, err)
	}
	return w.Flush()
}
