// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

import (
	"errors"

	"gopkg.in/check.v1"
)

func tableCounts(t *Table) map[string]uint64 {
	m := make(map[string]uint64)
	t.Do(func(kmer []byte, count uint64) { m[string(kmer)] = count })
	return m
}

func (s *S) TestBuild(c *check.C) {
	a := arenaOf(c, "AAAA", "AAAT", "ACGTNACGT")
	for i, t := range []struct {
		rec  int
		k    int
		want map[string]uint64
	}{
		{rec: 0, k: 2, want: map[string]uint64{"AA": 3}},
		{rec: 1, k: 2, want: map[string]uint64{"AA": 2, "AT": 1}},
		{rec: 1, k: 4, want: map[string]uint64{"AAAT": 1}},
		{rec: 2, k: 4, want: map[string]uint64{"ACGT": 2, "CGTN": 1, "GTNA": 1, "TNAC": 1, "NACG": 1}},
	} {
		tab, err := Build(a, t.rec, t.k)
		c.Assert(err, check.Equals, nil, check.Commentf("Test %d", i))
		c.Check(tab.Record(), check.Equals, t.rec)
		c.Check(tab.K(), check.Equals, t.k)
		c.Check(tab.Len(), check.Equals, len(t.want), check.Commentf("Test %d", i))
		c.Check(tableCounts(tab), check.DeepEquals, t.want, check.Commentf("Test %d", i))
	}
}

func (s *S) TestBuildBorrows(c *check.C) {
	a := arenaOf(c, "GATTACA")
	tab, err := Build(a, 0, 3)
	c.Assert(err, check.Equals, nil)
	seq := a.Record(0).Seq
	for _, e := range tab.Entries {
		km := a.Kmer(e.Ref, 3)
		c.Check(&km[0], check.Equals, &seq[e.Ref.Off])
	}
}

func (s *S) TestBuildLength(c *check.C) {
	a := arenaOf(c, "ACGT")
	for _, k := range []int{-1, 0, 5} {
		_, err := Build(a, 0, k)
		c.Check(errors.Is(err, ErrKmerLength), check.Equals, true, check.Commentf("k=%d", k))
	}
}

func (s *S) TestBuildAll(c *check.C) {
	a := arenaOf(c, "AAAA", "AAAT", "CCCCCC")
	for _, workers := range []int{0, 1, 3, 8} {
		tables, err := BuildAll(a, 2, workers)
		c.Assert(err, check.Equals, nil)
		c.Assert(tables, check.HasLen, 3)
		for i, tab := range tables {
			c.Check(tab.Record(), check.Equals, i)
		}
		c.Check(tableCounts(tables[2]), check.DeepEquals, map[string]uint64{"CC": 5})
	}

	_, err := BuildAll(a, 5, 4)
	c.Check(errors.Is(err, ErrKmerLength), check.Equals, true)
}

func (s *S) TestSelectSeed(c *check.C) {
	a := arenaOf(c, "AAAA", "ACGT", "ACGA", "AAAA")
	tables, err := BuildAll(a, 2, 2)
	c.Assert(err, check.Equals, nil)

	i, err := SelectSeed(tables)
	c.Check(err, check.Equals, nil)
	c.Check(i, check.Equals, 1)

	i, err = SelectSeed(tables[2:])
	c.Check(err, check.Equals, nil)
	c.Check(i, check.Equals, 0)

	i, err = SelectSeed([]*Table{tables[0], tables[3]})
	c.Check(err, check.Equals, nil)
	c.Check(i, check.Equals, 0)

	_, err = SelectSeed(nil)
	c.Check(err, check.Equals, ErrNoTables)
}

func (s *S) TestArena(c *check.C) {
	a := NewArena()
	c.Check(a.MinLen(), check.Equals, 0)
	for _, seq := range []string{"ACGTAC", "ACG", "ACGTACGT"} {
		_, err := a.Add("r", []byte(seq))
		c.Assert(err, check.Equals, nil)
	}
	c.Check(a.Len(), check.Equals, 3)
	c.Check(a.MinLen(), check.Equals, 3)
	c.Check(string(a.Kmer(Ref{Rec: 2, Off: 4}, 3)), check.Equals, "ACG")
}
