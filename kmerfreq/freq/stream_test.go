// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"bytes"
	"errors"
	"math/rand"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/check.v1"

	"github.com/biogo/kmertools/kmerfreq/kmer"
)

func aggregate(c *check.C, k, workers int, seqs ...string) *Canonical {
	a := arenaOf(c, seqs...)
	tables, err := BuildAll(a, k, workers)
	c.Assert(err, check.Equals, nil)
	can, err := Aggregate(a, tables, workers, DefaultShards)
	c.Assert(err, check.Equals, nil)
	return can
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	sort.Strings(lines)
	return lines
}

func (s *S) TestStreamExample(c *check.C) {
	can := aggregate(c, 2, 2, "AAAA", "AAAT")
	var buf bytes.Buffer
	n, err := Stream(&buf, can, 4, nil)
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, Written{Lines: 2})
	c.Check(sortedLines(buf.String()), check.DeepEquals, []string{"AA\tTT\t5", "AT\tAT\t1"})
}

func (s *S) TestStreamAmbiguous(c *check.C) {
	can := aggregate(c, 3, 2, "ACGNNNACG", "NACGT", "GGGN")
	var buf bytes.Buffer
	n, err := Stream(&buf, can, 3, nil)
	c.Assert(err, check.Equals, nil)
	c.Check(sortedLines(buf.String()), check.DeepEquals, []string{
		"ACG\tCGT\t3",
		"CGT\tACG\t1",
		"GGG\tCCC\t1",
	})
	c.Check(n.Lines, check.Equals, int64(3))
	// Distinct CGN, GNN, NNN, NNA, NAC and GGN.
	c.Check(n.Ambiguous, check.Equals, int64(6))
	c.Check(strings.Contains(buf.String(), "N"), check.Equals, false)
}

func (s *S) TestStreamDecodeSkip(c *check.C) {
	can := aggregate(c, 2, 1, "AC\xffGT")
	var (
		buf     bytes.Buffer
		skipped []string
	)
	n, err := Stream(&buf, can, 2, func(km []byte, err error) {
		c.Check(errors.Is(err, ErrDecode), check.Equals, true)
		skipped = append(skipped, string(km))
	})
	c.Assert(err, check.Equals, nil)
	sort.Strings(skipped)
	c.Check(skipped, check.DeepEquals, []string{"C\xff", "\xffG"})
	c.Check(n, check.Equals, Written{Lines: 2, Skipped: 2})
	c.Check(sortedLines(buf.String()), check.DeepEquals, []string{"AC\tGT\t1", "GT\tAC\t1"})
}

type failWriter struct{ n int }

func (w *failWriter) Write(b []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(b), nil
}

func (s *S) TestStreamWriteError(c *check.C) {
	can := aggregate(c, 2, 2, "ACGTTGCAACGGTC")
	n, err := Stream(&failWriter{n: 2}, can, 4, nil)
	c.Check(err, check.ErrorMatches, "disk full")
	c.Check(n.Lines, check.Equals, int64(2))
}

// trickleWriter writes each byte separately, yielding between bytes, so
// unserialised writers would interleave.
type trickleWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *trickleWriter) Write(b []byte) (int, error) {
	for _, c := range b {
		w.mu.Lock()
		w.buf.WriteByte(c)
		w.mu.Unlock()
		runtime.Gosched()
	}
	return len(b), nil
}

var lineFormat = regexp.MustCompile(`^([ACGT]+)\t([ACGT]+)\t([0-9]+)$`)

func (s *S) TestStreamLineAtomic(c *check.C) {
	rnd := rand.New(rand.NewSource(4))
	seqs := make([]string, 300)
	for i := range seqs {
		b := make([]byte, 300+rnd.Intn(300))
		for j := range b {
			b[j] = "ACGTN"[rnd.Intn(5)]
		}
		seqs[i] = string(b)
	}
	const k = 6
	can := aggregate(c, k, 64, seqs...)

	want := make(map[string]uint64)
	for km, n := range can.Counts() {
		if !kmer.HasAmbiguous([]byte(km)) {
			want[km] = n
		}
	}

	var w trickleWriter
	n, err := Stream(&w, can, 64, nil)
	c.Assert(err, check.Equals, nil)
	c.Check(n.Lines, check.Equals, int64(len(want)))

	got := make(map[string]uint64)
	for _, l := range strings.Split(strings.TrimSuffix(w.buf.String(), "\n"), "\n") {
		m := lineFormat.FindStringSubmatch(l)
		if !c.Check(m, check.NotNil, check.Commentf("malformed line %q", l)) {
			continue
		}
		c.Check(m[1], check.HasLen, k)
		c.Check(m[2], check.Equals, string(kmer.RevComp([]byte(m[1]))))
		_, dup := got[m[1]]
		c.Check(dup, check.Equals, false, check.Commentf("duplicate %q", m[1]))
		count, err := strconv.ParseUint(m[3], 10, 64)
		c.Assert(err, check.Equals, nil)
		got[m[1]] = count
	}
	c.Check(got, check.DeepEquals, want)
}

func (s *S) TestAppendLine(c *check.C) {
	b := AppendLine([]byte("x"), []byte("AAGG"), []byte("CCTT"), 42)
	c.Check(string(b), check.Equals, "xAAGG\tCCTT\t42\n")
}
