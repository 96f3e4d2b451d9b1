package sortedlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/relab/hpcplot/bench"
)

// Aggregate is the mean throughput of all runs of one experiment.
type Aggregate struct {
	Key
	ThroughputKops float64
	Runs           int
	Files          []string
}

// Aggregates averages the records by experiment key. The result is ordered
// by size, workload, implementation and thread count.
func Aggregates(records []Record) ([]Aggregate, error) {
	groups := bench.NewGroups[Key, Record]()
	for _, r := range records {
		groups.Add(r.Key(), r)
	}
	aggs := make([]Aggregate, 0, groups.Len())
	for _, k := range groups.Keys() {
		runs, _ := groups.Get(k)
		values := make([]float64, len(runs))
		files := make([]string, len(runs))
		for i, r := range runs {
			values[i] = r.ThroughputKops
			files[i] = r.File
		}
		mean, err := bench.Mean(values)
		if err != nil {
			return nil, fmt.Errorf("aggregate %+v: %w", k, err)
		}
		aggs = append(aggs, Aggregate{Key: k, ThroughputKops: mean, Runs: len(runs), Files: files})
	}
	sort.Slice(aggs, func(i, j int) bool {
		a, b := aggs[i].Key, aggs[j].Key
		switch {
		case a.Size != b.Size:
			return a.Size < b.Size
		case a.Workload != b.Workload:
			return a.Workload < b.Workload
		case a.Impl != b.Impl:
			return a.Impl < b.Impl
		default:
			return a.Threads < b.Threads
		}
	})
	return aggs, nil
}

var csvHeader = []string{"impl", "size", "threads", "workload", "throughput_kops", "runs", "files"}

// WriteCSV writes aggregates as a flat CSV table with a header row.
func WriteCSV(w io.Writer, aggs []Aggregate) error {
	wr := csv.NewWriter(w)
	if err := wr.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range aggs {
		row := []string{
			a.Impl,
			strconv.Itoa(a.Size),
			strconv.Itoa(a.Threads),
			a.Workload,
			strconv.FormatFloat(a.ThroughputKops, 'g', -1, 64),
			strconv.Itoa(a.Runs),
			strings.Join(a.Files, ";"),
		}
		if err := wr.Write(row); err != nil {
			return err
		}
	}
	wr.Flush()
	return wr.Error()
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) ([]Aggregate, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = len(csvHeader)
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing csv header")
	}
	var aggs []Aggregate
	for i, row := range rows[1:] {
		a := Aggregate{Key: Key{Impl: row[0], Workload: row[3]}}
		if a.Size, err = strconv.Atoi(row[1]); err != nil {
			return nil, fmt.Errorf("row %d: size: %w", i+1, err)
		}
		if a.Threads, err = strconv.Atoi(row[2]); err != nil {
			return nil, fmt.Errorf("row %d: threads: %w", i+1, err)
		}
		if a.ThroughputKops, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("row %d: throughput: %w", i+1, err)
		}
		if a.Runs, err = strconv.Atoi(row[5]); err != nil {
			return nil, fmt.Errorf("row %d: runs: %w", i+1, err)
		}
		if row[6] != "" {
			a.Files = strings.Split(row[6], ";")
		}
		aggs = append(aggs, a)
	}
	return aggs, nil
}
