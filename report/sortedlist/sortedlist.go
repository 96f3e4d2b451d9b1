// Package sortedlist reports the throughput of the concurrent sorted list
// implementations, read from one output file per benchmark run.
package sortedlist

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/logging"
)

var (
	// conc_ll_<impl>_S<size>_T<threads>_W<read>_<add>_<remove>.out
	fileNamePattern = bench.NewPattern(
		`^conc_ll_(?P<impl>[^_]+)_S(?P<size>\d+)_T(?P<thr>\d+)_W(?P<w1>\d+)_(?P<w2>\d+)_(?P<w3>\d+)\.out$`)
	throughputPattern = bench.NewPattern(`Throughput\(Kops/sec\):\s*(?P<tp>[0-9.]+)`)
	threadsPattern    = bench.NewPattern(`Nthreads:\s*(?P<n>\d+)`)

	outFiles = regexp.MustCompile(`\.out$`)
)

// Record is the measurement of one benchmark output file.
type Record struct {
	Impl           string
	Size           int
	Threads        int // from the file name
	Workload       string
	ThroughputKops float64
	// ReportedThreads is the Nthreads value printed in the file body,
	// or Threads if the body does not print it.
	ReportedThreads int
	File            string
}

// Key identifies the experiment a record belongs to.
type Key struct {
	Impl     string
	Size     int
	Threads  int
	Workload string
}

// Key returns the experiment key of r.
func (r Record) Key() Key {
	return Key{Impl: r.Impl, Size: r.Size, Threads: r.Threads, Workload: r.Workload}
}

// ParseFileName extracts the experiment key encoded in a file name.
func ParseFileName(name string) (k Key, ok bool) {
	f, ok := fileNamePattern.Find(name)
	if !ok {
		return Key{}, false
	}
	k = Key{
		Impl:     f.String("impl"),
		Size:     f.Int("size"),
		Threads:  f.Int("thr"),
		Workload: fmt.Sprintf("%s-%s-%s", f.String("w1"), f.String("w2"), f.String("w3")),
	}
	if f.Err() != nil {
		return Key{}, false
	}
	return k, true
}

// ParseRecord builds a record from a file name and the file's content.
// ok is false if the name does not follow the naming convention or the
// content lacks a throughput line.
func ParseRecord(name, content string) (r Record, ok bool) {
	k, ok := ParseFileName(name)
	if !ok {
		return Record{}, false
	}
	tp, ok := throughputPattern.Find(content)
	if !ok {
		return Record{}, false
	}
	r = Record{
		Impl:            k.Impl,
		Size:            k.Size,
		Threads:         k.Threads,
		Workload:        k.Workload,
		ThroughputKops:  tp.Float("tp"),
		ReportedThreads: k.Threads,
		File:            name,
	}
	if tp.Err() != nil {
		return Record{}, false
	}
	if nth, found := threadsPattern.Find(content); found {
		if n := nth.Int("n"); nth.Err() == nil {
			r.ReportedThreads = n
		}
	}
	return r, true
}

// Collect parses every result file in dir. Files that do not follow the
// naming convention or lack a throughput line are skipped.
func Collect(dir string, logger logging.Logger) ([]Record, error) {
	loc, err := bench.Locate(dir, outFiles)
	if err != nil {
		return nil, err
	}
	var records []Record
	for loc.Next() {
		name := filepath.Base(loc.Path())
		if _, ok := ParseFileName(name); !ok {
			logger.Debugf("skipping %s: unexpected file name", name)
			continue
		}
		content, err := bench.ReadFile(loc.Path())
		if err != nil {
			return nil, err
		}
		r, ok := ParseRecord(name, content)
		if !ok {
			logger.Debugf("skipping %s: no throughput line", name)
			continue
		}
		if r.ReportedThreads != r.Threads {
			logger.Warnw("thread count in file body differs from file name, using file name",
				"file", name, "name_threads", r.Threads, "reported_threads", r.ReportedThreads)
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		return nil, bench.NoInput("no valid .out files found with expected naming/content", dir)
	}
	return records, nil
}
