package kmeanscuda

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/relab/hpcplot/bench"
	"go.uber.org/multierr"
)

// row is one parsed line of a timing table: label, block size and average
// time per loop. Any further columns are ignored.
type row struct {
	label string
	block int
	time  float64
}

// readRows returns the well-formed rows of the CSV file at path.
// Headers, short rows and rows with non-numeric fields are skipped; a
// non-positive time is an error.
func readRows(path string) (rows []row, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, bench.NoInput("missing required file", path)
		}
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) < 3 {
			continue
		}
		block, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			continue
		}
		if err := bench.CheckTime(linePos(rd), t); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rows = append(rows, row{label: strings.TrimSpace(rec[0]), block: block, time: t})
	}
	return rows, nil
}

// ReadSequentialAvg returns the mean time of the rows labelled sequential,
// in any case, of the CSV file at path.
func ReadSequentialAvg(path string) (float64, error) {
	rows, err := readRows(path)
	if err != nil {
		return 0, err
	}
	var times []float64
	for _, r := range rows {
		if strings.EqualFold(r.label, "sequential") {
			times = append(times, r.time)
		}
	}
	if len(times) == 0 {
		return 0, bench.NoInput("no sequential data found", path)
	}
	return bench.Mean(times)
}

// ImplTimes maps implementation names to the mean time per block size.
type ImplTimes map[string]map[int]float64

// ReadImplAvgs returns the mean time of every implementation and block size
// found in the CSV file at path. Repeated rows are averaged.
func ReadImplAvgs(path string) (ImplTimes, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	type key struct {
		impl  string
		block int
	}
	groups := bench.NewGroups[key, float64]()
	for _, r := range rows {
		groups.Add(key{impl: r.label, block: r.block}, r.time)
	}
	times := make(ImplTimes)
	for _, k := range groups.Keys() {
		values, _ := groups.Get(k)
		mean, err := bench.Mean(values)
		if err != nil {
			return nil, err
		}
		if times[k.impl] == nil {
			times[k.impl] = make(map[int]float64)
		}
		times[k.impl][k.block] = mean
	}
	return times, nil
}

// linePos is the line of the time field of the last record read.
func linePos(rd *csv.Reader) int {
	line, _ := rd.FieldPos(2)
	return line
}
