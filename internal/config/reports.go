package config

import (
	"fmt"

	"github.com/relab/hpcplot/report/heat"
	"github.com/relab/hpcplot/report/kmeanscuda"
	"github.com/relab/hpcplot/report/kmeansmpi"
	"github.com/relab/hpcplot/report/sortedlist"
	"github.com/spf13/viper"
)

// DefaultSortedListOutDir is used when the sortedlist command gets no
// output directory.
const DefaultSortedListOutDir = "plots"

// NewSortedList returns the options of the sortedlist report. args are the
// positional arguments: the results directory and an optional output
// directory.
func NewSortedList(v *viper.Viper, root Root, args []string) (sortedlist.Options, error) {
	if len(args) == 0 || len(args) > 2 {
		return sortedlist.Options{}, fmt.Errorf("expected <results-dir> [outdir], got %d arguments", len(args))
	}
	opts := sortedlist.Options{
		ResultsDir: args[0],
		OutDir:     DefaultSortedListOutDir,
		Format:     root.Format,
	}
	section{v, "sortedlist"}.path("outdir", &opts.OutDir)
	if len(args) == 2 {
		opts.OutDir = args[1]
	}
	return opts, nil
}

// NewHeat returns the options of the heat transfer report.
func NewHeat(v *viper.Viper, root Root) (heat.Options, error) {
	opts := heat.DefaultOptions(root.BaseDir)
	opts.Format = root.Format
	s := section{v, "heat"}
	s.path("benchmarks", &opts.Benchmarks)
	s.path("convergence", &opts.Convergence)
	s.path("outdir", &opts.OutDir)
	s.string("method", &opts.Method)
	s.ints("sizes", &opts.Sizes)
	s.ints("procs", &opts.Procs)
	s.ints("bar-procs", &opts.BarProcs)
	s.int("conv-size", &opts.ConvSize)
	s.int("conv-procs", &opts.ConvProcs)
	if err := nonEmpty("heat.sizes", opts.Sizes); err != nil {
		return heat.Options{}, err
	}
	if err := nonEmpty("heat.procs", opts.Procs); err != nil {
		return heat.Options{}, err
	}
	return opts, nil
}

// NewKMeansCUDA returns the options of the CUDA k-means report.
func NewKMeansCUDA(v *viper.Viper, root Root) (kmeanscuda.Options, error) {
	opts := kmeanscuda.DefaultOptions(root.BaseDir)
	opts.Format = root.Format
	s := section{v, "kmeanscuda"}
	s.path("logs", &opts.LogsDir)
	s.path("benchmark", &opts.Benchmark)
	s.path("outdir", &opts.OutDir)
	s.string("gpu-prefix", &opts.GPUPrefix)
	s.int("size", &opts.Size)
	s.int("clusters", &opts.Clusters)
	s.ints("block-sizes", &opts.BlockSizes)
	if k := s.key("variants"); v.IsSet(k) {
		var variants []kmeanscuda.Variant
		if err := v.UnmarshalKey(k, &variants); err != nil {
			return kmeanscuda.Options{}, fmt.Errorf("%s: %w", k, err)
		}
		opts.Variants = variants
	}
	if err := nonEmpty("kmeanscuda.block-sizes", opts.BlockSizes); err != nil {
		return kmeanscuda.Options{}, err
	}
	if len(opts.Variants) == 0 {
		return kmeanscuda.Options{}, fmt.Errorf("kmeanscuda.variants must not be empty")
	}
	for i, variant := range opts.Variants {
		if variant.Coords <= 0 || len(variant.Impls) == 0 {
			return kmeanscuda.Options{}, fmt.Errorf("kmeanscuda.variants[%d]: need positive coords and at least one implementation", i)
		}
	}
	return opts, nil
}

// NewKMeansMPI returns the options of the MPI k-means report.
func NewKMeansMPI(v *viper.Viper, root Root) (kmeansmpi.Options, error) {
	opts := kmeansmpi.DefaultOptions(root.BaseDir)
	opts.Format = root.Format
	s := section{v, "kmeansmpi"}
	s.path("benchmarks", &opts.Benchmarks)
	s.path("outdir", &opts.OutDir)
	s.ints("procs", &opts.Procs)
	if err := nonEmpty("kmeansmpi.procs", opts.Procs); err != nil {
		return kmeansmpi.Options{}, err
	}
	return opts, nil
}
