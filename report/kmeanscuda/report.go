// Package kmeanscuda reports the CUDA k-means benchmarks: the GPU, transfer
// and CPU time breakdown and the speedup over the sequential version, both
// against the thread block size.
package kmeanscuda

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

// Variant is one set of implementations drawn in the same chart.
type Variant struct {
	Coords int      `mapstructure:"coords"`
	Impls  []string `mapstructure:"impls"`
}

// Tag returns the file name suffix of the variant.
func (v Variant) Tag() string {
	parts := make([]string, len(v.Impls))
	for i, impl := range v.Impls {
		parts[i] = strings.ToLower(impl)
	}
	return strings.Join(parts, "_")
}

// DefaultVariants are cumulative implementation sets for both datasets.
var DefaultVariants = []Variant{
	{Coords: 32, Impls: []string{"Naive"}},
	{Coords: 32, Impls: []string{"Naive", "Transpose"}},
	{Coords: 32, Impls: []string{"Naive", "Transpose", "Shmem"}},
	{Coords: 32, Impls: []string{"Naive", "Transpose", "Shmem", "All_GPU"}},
	{Coords: 2, Impls: []string{"Naive", "Transpose", "Shmem"}},
	{Coords: 2, Impls: []string{"Naive", "Transpose", "Shmem", "All_GPU"}},
}

// Options configure a report run.
type Options struct {
	LogsDir   string
	Benchmark string
	OutDir    string
	Format    string
	GPUPrefix string

	Size       int
	Clusters   int
	BlockSizes []int
	Variants   []Variant
}

// DefaultOptions returns the options matching the assignment layout below
// baseDir.
func DefaultOptions(baseDir string) Options {
	return Options{
		LogsDir:    filepath.Join(baseDir, "Execution_logs"),
		Benchmark:  filepath.Join(baseDir, "benchmark.out"),
		OutDir:     filepath.Join(baseDir, "diagrams", "images"),
		Format:     "png",
		GPUPrefix:  "silver1-V100",
		Size:       1024,
		Clusters:   64,
		BlockSizes: []int{32, 48, 64, 128, 238, 512, 1024},
		Variants:   DefaultVariants,
	}
}

func (o Options) sequentialCSV(coords int) string {
	return filepath.Join(o.LogsDir, fmt.Sprintf("Sz-%d_Coo-%d_Cl-%d.csv", o.Size, coords, o.Clusters))
}

func (o Options) gpuCSV(coords int) string {
	return filepath.Join(o.LogsDir, fmt.Sprintf("%s_Sz-%d_Coo-%d_Cl-%d.csv", o.GPUPrefix, o.Size, coords, o.Clusters))
}

// coords returns the distinct dataset dimensionalities of the variants.
func (o Options) coords() []int {
	var cs []int
	seen := make(map[int]bool)
	for _, v := range o.Variants {
		if !seen[v.Coords] {
			seen[v.Coords] = true
			cs = append(cs, v.Coords)
		}
	}
	return cs
}

// dataset is the input of one dimensionality.
type dataset struct {
	seqAvg float64
	impls  ImplTimes
}

// Run reads the timing tables and the combined log, validates that every
// charted implementation covers every block size, and renders a breakdown
// and a speedup chart per variant.
func Run(opts Options, r plotting.Renderer, logger logging.Logger) ([]string, error) {
	coords := opts.coords()
	required := make([]string, 0, 2*len(coords)+1)
	for _, c := range coords {
		required = append(required, opts.sequentialCSV(c), opts.gpuCSV(c))
	}
	required = append(required, opts.Benchmark)
	if err := bench.RequireFiles(required...); err != nil {
		return nil, err
	}

	data := make(map[int]dataset, len(coords))
	for _, c := range coords {
		seq, err := ReadSequentialAvg(opts.sequentialCSV(c))
		if err != nil {
			return nil, err
		}
		impls, err := ReadImplAvgs(opts.gpuCSV(c))
		if err != nil {
			return nil, err
		}
		logger.Debugf("coords=%d: sequential average %.4fs, %d implementations", c, seq, len(impls))
		data[c] = dataset{seqAvg: seq, impls: impls}
	}
	breakdown, err := ParseBreakdown(opts.Benchmark, coords, opts.Clusters)
	if err != nil {
		return nil, err
	}
	logger.Infof("parsed %d timing breakdowns from %s", len(breakdown), opts.Benchmark)

	if err := validate(opts, data, breakdown); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	var written []string
	for _, v := range opts.Variants {
		d := data[v.Coords]
		path := filepath.Join(opts.OutDir, fmt.Sprintf("time_breakdown_coo%d_%s.%s", v.Coords, v.Tag(), opts.Format))
		if err := r.StackedBars(path, breakdownChart(opts, v, d.seqAvg, breakdown)); err != nil {
			return written, err
		}
		written = append(written, path)

		path = filepath.Join(opts.OutDir, fmt.Sprintf("speedup_coo%d_%s.%s", v.Coords, v.Tag(), opts.Format))
		if err := r.Lines(path, speedupChart(opts, v, d, logger)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// validate checks that every implementation of every variant has a timing
// breakdown at every block size, and that the implementations present in
// the timing tables cover every block size.
func validate(opts Options, data map[int]dataset, breakdown Breakdown) error {
	type check struct {
		coords int
		impl   string
	}
	var errs []error
	seen := make(map[check]bool)
	for _, v := range opts.Variants {
		for _, impl := range v.Impls {
			k := check{coords: v.Coords, impl: impl}
			if seen[k] {
				continue
			}
			seen[k] = true
			c := bench.Coverage{
				Name:     fmt.Sprintf("breakdown block sizes for %s coords=%d", impl, v.Coords),
				Expected: opts.BlockSizes,
			}
			errs = append(errs, bench.CheckKeys(c, breakdown.Blocks(v.Coords, impl)))
			if times, ok := data[v.Coords].impls[impl]; ok {
				c.Name = fmt.Sprintf("block sizes for %s in %s", impl, filepath.Base(opts.gpuCSV(v.Coords)))
				errs = append(errs, bench.CheckKeys(c, times))
			}
		}
	}
	return bench.CheckAll(errs...)
}

func variantTitle(opts Options, what string, v Variant) string {
	return fmt.Sprintf("%s (Sz=%d, Coords=%d, Clusters=%d)\nImplementations: %s",
		what, opts.Size, v.Coords, opts.Clusters, strings.Join(v.Impls, " + "))
}

func breakdownChart(opts Options, v Variant, seqAvg float64, breakdown Breakdown) plotting.StackedBarChart {
	c := plotting.StackedBarChart{
		Title:      variantTitle(opts, "K-means Time Breakdown", v),
		XLabel:     "Sequential / Block size",
		YLabel:     "Time per loop (s)",
		Categories: []string{"Sequential"},
		Components: []string{"GPU time", "Transfer time", "CPU time"},
		Baseline:   &plotting.Baseline{Name: "Sequential", Value: seqAvg, Component: 2},
		Size:       plotting.Size{Width: 14 * vg.Inch, Height: 6 * vg.Inch},
	}
	for _, b := range opts.BlockSizes {
		c.Categories = append(c.Categories, strconv.Itoa(b))
	}
	for _, impl := range v.Impls {
		blocks := breakdown.Blocks(v.Coords, impl)
		gpu, trf, cpu := []float64{0}, []float64{0}, []float64{0}
		for _, b := range opts.BlockSizes {
			t := blocks[b]
			gpu = append(gpu, t.GPU)
			trf = append(trf, t.Transfers)
			cpu = append(cpu, t.CPU)
		}
		c.Groups = append(c.Groups, plotting.BarGroup{Name: impl, Segments: [][]float64{gpu, trf, cpu}})
	}
	return c
}

func speedupChart(opts Options, v Variant, d dataset, logger logging.Logger) plotting.LineChart {
	c := plotting.LineChart{
		Title:  variantTitle(opts, "Speedup vs Block Size", v),
		XLabel: "Block size",
		YLabel: "Speedup (seq_time / parallel_time)",
		Size:   plotting.Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch},
	}
	for _, b := range opts.BlockSizes {
		c.XTicks = append(c.XTicks, float64(b))
	}
	for _, impl := range v.Impls {
		times, ok := d.impls[impl]
		if !ok {
			logger.Debugf("no timings for %s coords=%d, omitting it from the speedup chart", impl, v.Coords)
			continue
		}
		points := make([]bench.Point, len(opts.BlockSizes))
		for i, b := range opts.BlockSizes {
			points[i] = bench.Point{X: float64(b), Y: times[b]}
		}
		s := bench.NewSeries(impl, points).TimeSpeedup(d.seqAvg)
		c.Series = append(c.Series, plotting.Series{Name: impl, XYer: s})
	}
	return c
}
