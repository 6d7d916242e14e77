// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package summary provides summary statistics on the k-mer frequency
// distribution of a canonical table.
package summary

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/biogo/kmertools/kmerfreq/freq"
	"github.com/biogo/kmertools/kmerfreq/kmer"
)

// Percentile is the count percentile reported by Of.
const Percentile = 0.95

// ErrNoKmers is returned by Spectrum when there is nothing to plot.
var ErrNoKmers = errors.New("summary: no k-mers")

// Summary holds statistics of k-mer counts. K-mers containing the
// ambiguity letter are not included.
type Summary struct {
	Distinct   int
	Total      uint64
	Mean       float64
	StdDev     float64
	Percentile float64 // Count at the Percentile quantile.
	Max        uint64
}

// counts returns the sorted counts of unambiguous k-mers in c, with their
// exact sum and maximum.
func counts(c *freq.Canonical) (x []float64, total, hi uint64) {
	c.Do(func(km []byte, n uint64) {
		if kmer.HasAmbiguous(km) {
			return
		}
		x = append(x, float64(n))
		total += n
		if n > hi {
			hi = n
		}
	})
	sort.Float64s(x)
	return x, total, hi
}

// Of returns the summary statistics of the counts in c.
func Of(c *freq.Canonical) Summary {
	x, total, hi := counts(c)
	var s Summary
	if len(x) == 0 {
		return s
	}
	s.Distinct = len(x)
	s.Total = total
	s.Max = hi
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	s.Percentile = stat.Quantile(Percentile, stat.Empirical, x, nil)
	return s
}

// Spectrum saves a histogram of the counts in c to the named file with the
// given number of bins. The image format is taken from the file extension.
func Spectrum(c *freq.Canonical, name string, bins int) error {
	x, _, _ := counts(c)
	if len(x) == 0 {
		return ErrNoKmers
	}
	if bins < 1 {
		bins = 1
	}

	p := plot.New()
	p.Title.Text = "k-mer spectrum"
	p.X.Label.Text = "count"
	p.Y.Label.Text = "distinct k-mers"

	h, err := plotter.NewHist(plotter.Values(x), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, name)
}
