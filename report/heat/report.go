package heat

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/logging"
	"github.com/relab/hpcplot/plotting"
	"gonum.org/v1/plot/vg"
)

// Options configure a report run.
type Options struct {
	Benchmarks  string
	Convergence string
	OutDir      string
	Method      string
	Format      string

	Sizes     []int
	Procs     []int // Procs[0] is the baseline of the speedup charts
	BarProcs  []int
	ConvSize  int
	ConvProcs int
}

// DefaultOptions returns the options matching the assignment layout below
// baseDir.
func DefaultOptions(baseDir string) Options {
	return Options{
		Benchmarks:  filepath.Join(baseDir, "heat_transfer", "mpi", "results_benchmark.txt"),
		Convergence: filepath.Join(baseDir, "heat_transfer", "validate_output.txt"),
		OutDir:      filepath.Join(baseDir, "diagrams", "images", "heat_transfer"),
		Method:      DefaultMethod,
		Format:      "png",
		Sizes:       []int{2048, 4096, 6144},
		Procs:       []int{1, 2, 4, 8, 16, 32, 64},
		BarProcs:    []int{8, 16, 32, 64},
		ConvSize:    512,
		ConvProcs:   64,
	}
}

const (
	totalClass = iota
	compClass
	convClass
)

// Palette index of the total time colour.
const timeColors = 2

// Run parses and validates both input files, then renders the speedup and
// time charts of every size and the convergence chart.
// Nothing is written unless all input is valid.
func Run(opts Options, r plotting.Renderer, logger logging.Logger) ([]string, error) {
	if len(opts.Procs) == 0 {
		return nil, fmt.Errorf("no process counts configured")
	}
	p := NewPatterns(opts.Method)
	b, err := ParseBenchmarks(opts.Benchmarks, p)
	if err != nil {
		return nil, err
	}
	logger.Infof("parsed %d %s configurations from %s", len(b), opts.Method, opts.Benchmarks)
	if err := Validate(b, opts.Sizes, opts.Procs); err != nil {
		return nil, err
	}
	var errs []error
	for _, size := range opts.Sizes {
		c := bench.Coverage{Name: fmt.Sprintf("bar plot processes for size %d", size), Expected: opts.BarProcs}
		errs = append(errs, bench.CheckKeys(c, b.Procs(size)))
	}
	if err := bench.CheckAll(errs...); err != nil {
		return nil, err
	}
	conv, err := ParseConvergence(opts.Convergence, p, opts.ConvSize, opts.ConvProcs)
	if err != nil {
		return nil, err
	}
	logger.Debugf("serial convergence time %.3fs at %dx%d", conv.SerialTotal, conv.Size, conv.Size)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	prefix := strings.ToLower(opts.Method)
	var written []string
	bars := func(c plotting.BarChart, format string, args ...interface{}) error {
		path := filepath.Join(opts.OutDir, fmt.Sprintf(format, args...)+"."+opts.Format)
		if err := r.Bars(path, c); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for _, size := range opts.Sizes {
		times := b.Procs(size)
		if err := bars(speedupChart(opts, size, times), "%s_speedup_%d", prefix, size); err != nil {
			return written, err
		}
		yMax := timesYMax(opts.BarProcs, times)
		for _, procs := range opts.BarProcs {
			t := times[procs]
			chart := plotting.BarChart{
				Title:      fmt.Sprintf("%s MPI Times (Matrix %dx%d, %d processes)", opts.Method, size, size, procs),
				XLabel:     "Time type",
				YLabel:     "Time (s)",
				Categories: []string{"Total time", "Computation time"},
				Values:     []float64{t.Total, t.Computation},
				Classes:    []string{"Total time", "Computation time"},
				Class:      []int{totalClass, compClass},
				FirstColor: timeColors,
				YMax:       yMax,
				Precision:  3,
				Size:       plotting.Size{Width: 7 * vg.Inch, Height: 5 * vg.Inch},
			}
			if err := bars(chart, "%s_times_%d_p%d", prefix, size, procs); err != nil {
				return written, err
			}
		}
	}

	chart := plotting.BarChart{
		Title:      fmt.Sprintf("%s MPI Convergence Check (Matrix %dx%d, %d processes)", opts.Method, conv.Size, conv.Size, conv.Procs),
		XLabel:     "Time type",
		YLabel:     "Time (s)",
		Categories: []string{"Total time", "Computation time", "Convergence time"},
		Values:     []float64{conv.Total, conv.Computation, conv.Convergence},
		Classes:    []string{"Total time", "Computation time", "Convergence time"},
		Class:      []int{totalClass, compClass, convClass},
		FirstColor: timeColors,
		Precision:  3,
		Size:       plotting.Size{Width: 8 * vg.Inch, Height: 5 * vg.Inch},
	}
	if err := bars(chart, "%s_convergence_%d_p%d", prefix, conv.Size, conv.Procs); err != nil {
		return written, err
	}
	return written, nil
}

// Speedups returns the speedup of every process count over the first.
func Speedups(procs []int, times map[int]Times) bench.Series {
	points := make([]bench.Point, len(procs))
	for i, p := range procs {
		points[i] = bench.Point{X: float64(p), Y: times[p].Total}
	}
	s := bench.NewSeries("speedup", points)
	return s.TimeSpeedup(times[procs[0]].Total)
}

func speedupChart(opts Options, size int, times map[int]Times) plotting.BarChart {
	sp := Speedups(opts.Procs, times)
	c := plotting.BarChart{
		Title:     fmt.Sprintf("%s MPI Speedup (Matrix %dx%d)", opts.Method, size, size),
		XLabel:    "MPI processes",
		YLabel:    "Speedup (sequential time / parallel time)",
		Classes:   []string{"Sequential", "MPI"},
		Precision: 2,
	}
	for i, p := range opts.Procs {
		y, _ := sp.At(float64(p))
		c.Categories = append(c.Categories, strconv.Itoa(p))
		c.Values = append(c.Values, y)
		if i == 0 {
			c.Class = append(c.Class, 0)
		} else {
			c.Class = append(c.Class, 1)
		}
	}
	return c
}

// timesYMax is the Y limit shared by the time charts of one size.
func timesYMax(procs []int, times map[int]Times) float64 {
	max := 0.0
	for _, p := range procs {
		t := times[p]
		if t.Total > max {
			max = t.Total
		}
		if t.Computation > max {
			max = t.Computation
		}
	}
	if max <= 0 {
		return 1
	}
	return max * 1.1
}
