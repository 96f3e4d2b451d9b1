package cli

import (
	"github.com/relab/hpcplot/internal/config"
	"github.com/relab/hpcplot/logging"
	"github.com/relab/hpcplot/report/heat"
	"github.com/relab/hpcplot/report/kmeanscuda"
	"github.com/relab/hpcplot/report/kmeansmpi"
	"github.com/relab/hpcplot/report/sortedlist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sortedListCmd = &cobra.Command{
	Use:   "sortedlist <results-dir> [outdir]",
	Short: "Plot the throughput and speedup of the concurrent sorted lists.",
	Long: `The sortedlist command reads every conc_ll_<impl>_S<size>_T<threads>_W<r>_<a>_<rm>.out
file in the results directory, writes all_results.csv and one throughput and
one speedup chart per list size and workload to the output directory
(default "plots").`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		opts, err := config.NewSortedList(viper.GetViper(), rootCfg, args)
		if err != nil {
			return err
		}
		written, err := sortedlist.Run(opts, rootCfg.Renderer(), logging.New("sortedlist"))
		return done(written, opts.OutDir, err)
	},
}

var kmeansCUDACmd = &cobra.Command{
	Use:   "kmeanscuda",
	Short: "Plot the time breakdown and speedup of the CUDA k-means versions.",
	Long: `The kmeanscuda command reads the sequential and GPU timing tables in the
logs directory and the combined benchmark log, and renders a stacked time
breakdown and a speedup chart against the block size for every configured
set of implementations.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		opts, err := config.NewKMeansCUDA(viper.GetViper(), rootCfg)
		if err != nil {
			return err
		}
		written, err := kmeanscuda.Run(opts, rootCfg.Renderer(), logging.New("kmeanscuda"))
		return done(written, opts.OutDir, err)
	},
}

var heatCmd = &cobra.Command{
	Use:   "heat",
	Short: "Plot the MPI heat transfer speedup, times and convergence check cost.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		opts, err := config.NewHeat(viper.GetViper(), rootCfg)
		if err != nil {
			return err
		}
		written, err := heat.Run(opts, rootCfg.Renderer(), logging.New("heat"))
		return done(written, opts.OutDir, err)
	},
}

var kmeansMPICmd = &cobra.Command{
	Use:   "kmeansmpi",
	Short: "Plot the MPI k-means execution time and speedup.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		opts, err := config.NewKMeansMPI(viper.GetViper(), rootCfg)
		if err != nil {
			return err
		}
		written, err := kmeansmpi.Run(opts, rootCfg.Renderer(), logging.New("kmeansmpi"))
		return done(written, opts.OutDir, err)
	},
}

func done(written []string, outDir string, err error) error {
	for _, path := range written {
		logger.Debugf("wrote %s", path)
	}
	if err != nil {
		return err
	}
	logger.Infof("wrote %d files to %s", len(written), outDir)
	return nil
}

func init() {
	rootCmd.AddCommand(sortedListCmd, kmeansCUDACmd, heatCmd, kmeansMPICmd)

	kmeansCUDACmd.Flags().String("logs", "", "directory of the timing tables (default <base-dir>/Execution_logs)")
	kmeansCUDACmd.Flags().String("benchmark", "", "combined benchmark log (default <base-dir>/benchmark.out)")
	kmeansCUDACmd.Flags().String("outdir", "", "output directory (default <base-dir>/diagrams/images)")
	kmeansCUDACmd.Flags().Int("size", 1024, "dataset size in the table file names")
	kmeansCUDACmd.Flags().Int("clusters", 64, "number of clusters of the charted datasets")
	kmeansCUDACmd.Flags().String("gpu-prefix", "silver1-V100", "file name prefix of the GPU timing tables")
	bindFlags(kmeansCUDACmd)

	heatCmd.Flags().String("benchmarks", "", "benchmark results (default <base-dir>/heat_transfer/mpi/results_benchmark.txt)")
	heatCmd.Flags().String("convergence", "", "convergence check results (default <base-dir>/heat_transfer/validate_output.txt)")
	heatCmd.Flags().String("outdir", "", "output directory (default <base-dir>/diagrams/images/heat_transfer)")
	heatCmd.Flags().String("method", heat.DefaultMethod, "method label of the result lines, e.g. RedBlackSOR or GaussSeidelSOR")
	bindFlags(heatCmd)

	kmeansMPICmd.Flags().String("benchmarks", "", "directory of kmeans_np<P>.txt files (default <base-dir>/kmeans/benchmarks_kmeans)")
	kmeansMPICmd.Flags().String("outdir", "", "output directory (default <base-dir>/diagrams/images/kmeans)")
	bindFlags(kmeansMPICmd)
}
