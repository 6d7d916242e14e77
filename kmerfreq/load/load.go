// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package load reads multi-FASTA DNA sequence files into a freq.Arena.
package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	gzip "github.com/klauspost/pgzip"

	"github.com/biogo/kmertools/kmerfreq/freq"
)

// ErrEmpty is returned when an input holds no sequence records.
var ErrEmpty = errors.New("load: no sequence records")

type gzFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open opens the named file for reading. Files with a .gz suffix are
// decompressed.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("load: %s: %w", name, err)
	}
	return gzFile{Reader: gz, f: f}, nil
}

// Records reads all FASTA records from r into a new arena. Any parse error
// is returned and no arena is produced.
func Records(r io.Reader) (*freq.Arena, error) {
	a := freq.NewArena()
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		b := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			b[i] = byte(l)
		}
		if _, err := a.Add(s.Name(), b); err != nil {
			return nil, err
		}
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("load: failed during read: %w", err)
	}
	if a.Len() == 0 {
		return nil, ErrEmpty
	}
	return a, nil
}

// File reads all FASTA records from the named file.
func File(name string) (*freq.Arena, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a, err := Records(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}
