// Package kmeansmpi reports the execution time and speedup of the MPI
// k-means implementation, read from one log file per process count.
package kmeansmpi

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/logging"
	"github.com/relab/hpcplot/plotting"
	"gonum.org/v1/plot/vg"
)

var (
	fileNamePattern = bench.NewPattern(`^kmeans_np(?P<p>\d+)\.txt$`)
	totalPattern    = bench.NewPattern(`total\s*=\s*(?P<total>[0-9]*\.?[0-9]+)s`)
	datasetPattern  = bench.NewPattern(`dataset_size\s*=\s*(?P<mb>[0-9.]+)\s*MB\s+numObjs\s*=\s*(?P<objs>\d+)\s+` +
		`numCoords\s*=\s*(?P<coords>\d+)\s+numClusters\s*=\s*(?P<clusters>\d+)`)
	loopsPattern = bench.NewPattern(`nloops\s*=\s*(?P<loops>\d+)`)
)

// Dataset describes the k-means input, as printed by the program.
type Dataset struct {
	SizeMB   string
	Objs     int
	Coords   int
	Clusters int
	Loops    int
}

// String returns the configuration line used in chart titles.
func (d *Dataset) String() string {
	if d == nil {
		return "Config: (unknown)"
	}
	return fmt.Sprintf("Config: Size=%s MB, Objs=%d, Coords=%d, Clusters=%d, Loops=%d",
		d.SizeMB, d.Objs, d.Coords, d.Clusters, d.Loops)
}

// ParseDataset extracts the dataset description from a log. It returns nil
// if the log does not print both the dataset and the loop count.
func ParseDataset(content string) *Dataset {
	ds, ok := datasetPattern.Find(content)
	if !ok {
		return nil
	}
	lp, ok := loopsPattern.Find(content)
	if !ok {
		return nil
	}
	d := &Dataset{
		SizeMB:   ds.String("mb"),
		Objs:     ds.Int("objs"),
		Coords:   ds.Int("coords"),
		Clusters: ds.Int("clusters"),
		Loops:    lp.Int("loops"),
	}
	if ds.Err() != nil || lp.Err() != nil {
		return nil
	}
	return d
}

// ParseTotal extracts the total execution time in seconds. ok is false if
// content has no total line; a total that is not positive is an error.
func ParseTotal(content string) (total float64, ok bool, err error) {
	f, line, ok := totalPattern.FindLine(content)
	if !ok {
		return 0, false, nil
	}
	total = f.Float("total")
	if f.Err() != nil {
		return 0, false, nil
	}
	if err := bench.CheckTime(line, total); err != nil {
		return 0, true, err
	}
	return total, true, nil
}

// Collect reads the total time of every kmeans_np<P>.txt file in dir, keyed
// by process count. Files without a total line are skipped with a warning.
func Collect(dir string, logger logging.Logger) (map[int]float64, error) {
	loc, err := bench.Locate(dir, fileNamePattern.Regexp())
	if err != nil {
		return nil, err
	}
	times := make(map[int]float64)
	found := false
	for loc.Next() {
		name := filepath.Base(loc.Path())
		f, ok := fileNamePattern.Find(name)
		if !ok {
			continue
		}
		procs := f.Int("p")
		if f.Err() != nil {
			logger.Debugf("skipping %s: %v", name, f.Err())
			continue
		}
		found = true
		content, err := bench.ReadFile(loc.Path())
		if err != nil {
			return nil, err
		}
		total, ok, err := ParseTotal(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", loc.Path(), err)
		}
		if !ok {
			logger.Warnw("could not find total time, skipping file", "file", loc.Path())
			continue
		}
		times[procs] = total
	}
	if !found {
		return nil, bench.NoInput("no benchmark files found", dir)
	}
	return times, nil
}

// Options configure a report run.
type Options struct {
	Benchmarks string
	OutDir     string
	Format     string
	// Procs are the expected process counts. Procs[0] is the sequential
	// baseline, and its log describes the dataset.
	Procs []int
}

// DefaultOptions returns the options matching the assignment layout below
// baseDir.
func DefaultOptions(baseDir string) Options {
	return Options{
		Benchmarks: filepath.Join(baseDir, "kmeans", "benchmarks_kmeans"),
		OutDir:     filepath.Join(baseDir, "diagrams", "images", "kmeans"),
		Format:     "png",
		Procs:      []int{1, 2, 4, 8, 16, 32, 64},
	}
}

// Run renders the time and speedup charts.
func Run(opts Options, r plotting.Renderer, logger logging.Logger) ([]string, error) {
	if len(opts.Procs) == 0 {
		return nil, fmt.Errorf("no process counts configured")
	}
	times, err := Collect(opts.Benchmarks, logger)
	if err != nil {
		return nil, err
	}
	if err := bench.CheckKeys(bench.Coverage{Name: "benchmarks for processes", Expected: opts.Procs}, times); err != nil {
		return nil, err
	}
	baseline := filepath.Join(opts.Benchmarks, fmt.Sprintf("kmeans_np%d.txt", opts.Procs[0]))
	content, err := bench.ReadFile(baseline)
	if err != nil {
		return nil, err
	}
	config := ParseDataset(content).String()
	logger.Info(config)

	labels := []string{"Sequential"}
	class := []int{0}
	points := make([]bench.Point, len(opts.Procs))
	for i, p := range opts.Procs {
		points[i] = bench.Point{X: float64(p), Y: times[p]}
		if i > 0 {
			labels = append(labels, strconv.Itoa(p))
			class = append(class, 1)
		}
	}
	series := bench.NewSeries("time", points)
	speedup := series.TimeSpeedup(times[opts.Procs[0]])
	values := func(s bench.Series) []float64 {
		vs := make([]float64, len(opts.Procs))
		for i, p := range opts.Procs {
			vs[i], _ = s.At(float64(p))
		}
		return vs
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	chart := func(title, ylabel string, vs []float64) plotting.BarChart {
		return plotting.BarChart{
			Title:      title + "\n" + config,
			XLabel:     "Sequential / MPI processes",
			YLabel:     ylabel,
			Categories: labels,
			Values:     vs,
			Classes:    []string{"Sequential", "MPI"},
			Class:      class,
			Precision:  3,
			Size:       plotting.Size{Width: 10 * vg.Inch, Height: 6 * vg.Inch},
		}
	}
	var written []string
	path := filepath.Join(opts.OutDir, "kmeans_time."+opts.Format)
	if err := r.Bars(path, chart("K-means MPI Execution Time", "Time (s)", values(series))); err != nil {
		return written, err
	}
	written = append(written, path)
	path = filepath.Join(opts.OutDir, "kmeans_speedup."+opts.Format)
	if err := r.Bars(path, chart("K-means MPI Speedup", "Speedup (sequential time / parallel time)", values(speedup))); err != nil {
		return written, err
	}
	written = append(written, path)
	return written, nil
}
