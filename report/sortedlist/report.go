package sortedlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/logging"
	"github.com/relab/hpcplot/plotting"
	"go.uber.org/multierr"
)

// CSVName is the name of the flattened table written next to the charts.
const CSVName = "all_results.csv"

// Options configure a report run.
type Options struct {
	ResultsDir string
	OutDir     string
	Format     string // chart file extension, without the dot
}

type chartKey struct {
	Size     int
	Workload string
}

// Run parses the results directory, writes the CSV table and renders one
// throughput and one speedup chart per (size, workload) combination.
// It returns the paths of the files written.
func Run(opts Options, r plotting.Renderer, logger logging.Logger) ([]string, error) {
	records, err := Collect(opts.ResultsDir, logger)
	if err != nil {
		return nil, err
	}
	aggs, err := Aggregates(records)
	if err != nil {
		return nil, err
	}
	logger.Infof("parsed %d result files into %d experiments", len(records), len(aggs))

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	csvPath := filepath.Join(opts.OutDir, CSVName)
	if err := writeCSVFile(csvPath, aggs); err != nil {
		return nil, err
	}
	written := []string{csvPath}

	byChart := bench.NewGroups[chartKey, Aggregate]()
	for _, a := range aggs {
		byChart.Add(chartKey{Size: a.Size, Workload: a.Workload}, a)
	}
	for _, k := range byChart.Keys() {
		group, _ := byChart.Get(k)
		tp, sp, ticks, err := chartSeries(group, logger)
		if err != nil {
			return written, err
		}
		suffix := fmt.Sprintf("S%d_W%s.%s", k.Size, strings.ReplaceAll(k.Workload, "-", "_"), opts.Format)

		path := filepath.Join(opts.OutDir, "throughput_"+suffix)
		err = r.Lines(path, plotting.LineChart{
			Title:  fmt.Sprintf("Concurrent Sorted List, Size=%d, Workload=%s", k.Size, k.Workload),
			XLabel: "Threads (log2)",
			YLabel: "Throughput (Kops/sec)",
			LogX:   true,
			XTicks: ticks,
			Series: tp,
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)

		path = filepath.Join(opts.OutDir, "speedup_"+suffix)
		err = r.Lines(path, plotting.LineChart{
			Title:  fmt.Sprintf("Speedup, Size=%d, Workload=%s", k.Size, k.Workload),
			XLabel: "Threads (log2)",
			YLabel: "Speedup vs 1 thread (same impl)",
			LogX:   true,
			XTicks: ticks,
			Series: sp,
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// chartSeries returns the throughput series per implementation, the
// speedup series of the implementations with a single-thread run, and the
// thread counts seen.
func chartSeries(group []Aggregate, logger logging.Logger) (tp, sp []plotting.Series, ticks []float64, err error) {
	byImpl := make(map[string]*bench.Groups[float64, float64])
	threads := make(map[float64]bool)
	for _, a := range group {
		g, ok := byImpl[a.Impl]
		if !ok {
			g = bench.NewGroups[float64, float64]()
			byImpl[a.Impl] = g
		}
		g.Add(float64(a.Threads), a.ThroughputKops)
		threads[float64(a.Threads)] = true
	}
	for _, impl := range bench.SortedKeys(byImpl) {
		s, err := bench.MeanSeries(impl, byImpl[impl])
		if err != nil {
			return nil, nil, nil, err
		}
		tp = append(tp, plotting.Series{Name: impl, XYer: s})
		speedup, ok := s.Speedup(1)
		if !ok {
			logger.Debugf("no single-thread run of %s, omitting it from the speedup chart", impl)
			continue
		}
		sp = append(sp, plotting.Series{Name: impl, XYer: speedup})
	}
	for t := range threads {
		ticks = append(ticks, t)
	}
	sort.Float64s(ticks)
	return tp, sp, ticks, nil
}

func writeCSVFile(path string, aggs []Aggregate) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	if err := WriteCSV(f, aggs); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
