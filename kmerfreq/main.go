// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// kmerfreq counts the occurrences of every k-mer across all records of a
// multi-FASTA DNA sequence file.
//
// By default the per-record counts are merged and one line is written to
// stdout for each distinct k-mer that does not contain an N:
//
//	<kmer>\t<reverse complement>\t<count>
//
// Lines are written in no particular order. With -out, no merging is
// performed and each record's own counts are written, sorted by k-mer, to a
// separate file in the named directory.
//
// Timings and other diagnostics are logged to stderr.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"go.uber.org/zap"

	"github.com/biogo/kmertools/kmerfreq/freq"
	"github.com/biogo/kmertools/kmerfreq/load"
	"github.com/biogo/kmertools/kmerfreq/perrecord"
	"github.com/biogo/kmertools/kmerfreq/summary"
)

var (
	k        = flag.Int("k", 0, "kmer size (required).")
	inName   = flag.String("in", "", "input multi-FASTA file, may be gzipped (required).")
	outDir   = flag.String("out", "", "directory for unmerged per-record output. Defaults to merged output on stdout.")
	threads  = flag.Int("threads", runtime.GOMAXPROCS(0), "number of worker goroutines.")
	shards   = flag.Int("shards", freq.DefaultShards, "number of lock shards in the merged table.")
	stats    = flag.Bool("stats", false, "log summary statistics of the merged k-mer counts.")
	spectrum = flag.String("spectrum", "", "save a histogram of merged k-mer counts to this image file.")
	bins     = flag.Int("bins", 50, "number of histogram bins for -spectrum.")

	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to this file.")

	help = flag.Bool("help", false, "help prints this message.")
)

var errUsage = errors.New("usage")

type config struct {
	k        int
	in       string
	out      string
	threads  int
	shards   int
	stats    bool
	spectrum string
	bins     int
}

func (c *config) validate() error {
	if c.k < 1 {
		return fmt.Errorf("%w: k-mer length must be positive, got %d", errUsage, c.k)
	}
	if c.in == "" {
		return fmt.Errorf("%w: missing input file", errUsage)
	}
	if c.threads < 1 {
		c.threads = 1
	}
	if c.shards < 1 {
		c.shards = 1
	}
	if c.shards > freq.MaxShards {
		return fmt.Errorf("%w: shard count must be at most %d, got %d", errUsage, freq.MaxShards, c.shards)
	}
	return nil
}

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config{
		k:        *k,
		in:       *inName,
		out:      *outDir,
		threads:  *threads,
		shards:   *shards,
		stats:    *stats,
		spectrum: *spectrum,
		bins:     *bins,
	}
	if err := cfg.validate(); err != nil {
		flag.Usage()
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if *cpuprofile != "" {
		profile, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Fatal("failed to create cpu profile", zap.Error(err))
		}
		logger.Info("writing cpu profile", zap.String("file", *cpuprofile))
		pprof.StartCPUProfile(profile)
	}

	out := bufio.NewWriterSize(os.Stdout, 1<<16)
	err = run(cfg, out, logger)
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		logger.Fatal("kmerfreq failed", zap.Error(err))
	}
}

// run executes the operating mode selected by cfg, writing merged output
// to stdout.
func run(cfg config, stdout io.Writer, logger *zap.Logger) error {
	start := time.Now()

	a, err := load.File(cfg.in)
	if err != nil {
		return err
	}
	st := load.StatsOf(a)
	logger.Info("read sequences",
		zap.String("file", cfg.in),
		zap.Int("records", st.Seqs),
		zap.Int("size", st.Size),
		zap.Int("min", st.Min),
		zap.Int("max", st.Max),
		zap.Float64("avg", st.Avg),
		zap.Int("n50", st.N50),
	)
	if cfg.k > st.Min {
		return fmt.Errorf("%w: k=%d exceeds shortest record length %d", freq.ErrKmerLength, cfg.k, st.Min)
	}

	if cfg.out != "" {
		return runPerRecord(cfg, a, logger, start)
	}
	return runMerged(cfg, a, stdout, logger, start)
}

func runPerRecord(cfg config, a *freq.Arena, logger *zap.Logger, start time.Time) error {
	err := os.MkdirAll(cfg.out, os.ModeDir|0o750)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	err = perrecord.Write(cfg.out, a, cfg.k, cfg.threads)
	if err != nil {
		return err
	}
	logger.Info("wrote per-record tables",
		zap.String("dir", cfg.out),
		zap.Int("files", a.Len()),
		zap.Duration("total", time.Since(start)),
	)
	return nil
}

func runMerged(cfg config, a *freq.Arena, stdout io.Writer, logger *zap.Logger, start time.Time) error {
	t := time.Now()
	tables, err := freq.BuildAll(a, cfg.k, cfg.threads)
	if err != nil {
		return err
	}
	build := time.Since(t)

	t = time.Now()
	can, err := freq.Aggregate(a, tables, cfg.threads, cfg.shards)
	if err != nil {
		return err
	}
	merge := time.Since(t)

	t = time.Now()
	n, err := freq.Stream(stdout, can, cfg.threads, func(km []byte, err error) {
		logger.Warn("skipping k-mer", zap.Binary("kmer", km), zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	write := time.Since(t)

	logger.Info("merged k-mer counts",
		zap.Int("k", cfg.k),
		zap.Int("distinct", can.Len()),
		zap.Int64("lines", n.Lines),
		zap.Int64("ambiguous", n.Ambiguous),
		zap.Int64("skipped", n.Skipped),
	)
	logger.Info("elapsed",
		zap.Duration("build", build),
		zap.Duration("merge", merge),
		zap.Duration("write", write),
		zap.Duration("total", time.Since(start)),
	)

	if cfg.stats {
		s := summary.Of(can)
		logger.Info("k-mer summary",
			zap.Int("distinct", s.Distinct),
			zap.Uint64("total", s.Total),
			zap.Float64("mean", s.Mean),
			zap.Float64("stdev", s.StdDev),
			zap.Float64("percentile", summary.Percentile),
			zap.Float64("percentile_count", s.Percentile),
			zap.Uint64("max", s.Max),
		)
	}
	if cfg.spectrum != "" {
		err = summary.Spectrum(can, cfg.spectrum, cfg.bins)
		if err != nil {
			return fmt.Errorf("failed to save spectrum: %w", err)
		}
		logger.Info("saved spectrum", zap.String("file", cfg.spectrum))
	}
	return nil
}
