// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kmer provides k-mer enumeration and reverse complementation
// of DNA byte sequences.
package kmer

import (
	"bytes"
	"errors"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
	"github.com/cespare/xxhash/v2"
)

// Ambiguous is the letter marking an unresolved base.
const Ambiguous = 'N'

// ErrLength is returned when k is not in [1, len(s)].
var ErrLength = errors.New("kmer: invalid k-mer length")

type group struct {
	pos []int
}

// Enumerate calls fn once for every distinct k-mer in s, in order of first
// occurrence, with the ascending positions at which the k-mer starts. The
// kmer slice passed to fn aliases s.
func Enumerate(s []byte, k int, fn func(kmer []byte, pos []int)) error {
	if k < 1 || k > len(s) {
		return ErrLength
	}

	var (
		index  = make(map[uint64][]*group)
		groups []*group
	)
	for i := 0; i+k <= len(s); i++ {
		w := s[i : i+k]
		h := xxhash.Sum64(w)
		var g *group
		for _, c := range index[h] {
			if bytes.Equal(s[c.pos[0]:c.pos[0]+k], w) {
				g = c
				break
			}
		}
		if g == nil {
			g = &group{}
			index[h] = append(index[h], g)
			groups = append(groups, g)
		}
		g.pos = append(g.pos, i)
	}

	for _, g := range groups {
		fn(s[g.pos[0]:g.pos[0]+k], g.pos)
	}
	return nil
}

// RevComp returns the reverse complement of the DNA sequence b. IUPAC
// ambiguity codes are complemented and N is its own complement. The case of
// each letter is preserved and b is not modified.
func RevComp(b []byte) []byte {
	s := linear.NewSeq("", alphabet.BytesToLetters(append([]byte(nil), b...)), alphabet.DNAredundant)
	s.RevComp()
	rc := make([]byte, len(s.Seq))
	for i, l := range s.Seq {
		rc[i] = byte(l)
	}
	return rc
}

// HasAmbiguous returns whether b contains the ambiguity letter.
func HasAmbiguous(b []byte) bool { return bytes.IndexByte(b, Ambiguous) >= 0 }
