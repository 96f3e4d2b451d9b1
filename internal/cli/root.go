package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/internal/config"
	"github.com/relab/hpcplot/internal/profiling"
	"github.com/relab/hpcplot/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitNoInput = 2
)

var (
	cfgFile     string
	configErr   error
	rootCfg     config.Root
	stopProfile func() error

	logger = logging.New("hpcplot")

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "hpcplot",
		Short: "A command-line utility for plotting HPC benchmark results.",
		Long: `hpcplot reads the logs written by the assignment benchmarks and renders
throughput, speedup and time breakdown charts.

Each report has its own command. Input and output paths default to the
assignment layout below --base-dir, and every command flag can also be set
in the config file, in a section named after the command.`,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	if stopProfile != nil {
		err = multierr.Append(err, stopProfile())
		stopProfile = nil
	}
	if err != nil {
		logger.Error(err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps missing input to its own exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bench.ErrNoInput):
		return exitNoInput
	default:
		return exitFailure
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hpcplot.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "sets the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSlice("log-pkgs", []string{}, "set the log level on a per-package basis.")
	rootCmd.PersistentFlags().String("base-dir", ".", "assignment root used to derive the default input and output paths")
	rootCmd.PersistentFlags().Int("dpi", 200, "image resolution in dots per inch")
	rootCmd.PersistentFlags().String("format", "png", "chart file format: "+strings.Join(config.Formats, ", "))

	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given file")
	rootCmd.PersistentFlags().String("trace", "", "write an execution trace to the given file")
	rootCmd.PersistentFlags().String("fgprof-profile", "", "write an fgprof profile to the given file")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			cobra.CheckErr(viper.BindPFlag(f.Name, f))
		}
	})
}

// bindFlags binds the flags of a command under the command's key prefix.
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		cobra.CheckErr(viper.BindPFlag(cmd.Name()+"."+f.Name, f))
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configErr = nil
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			configErr = err
			return
		}

		// Search config in home directory with name ".hpcplot" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".hpcplot")
	}

	viper.SetEnvPrefix("hpcplot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case cfgFile != "" || !errors.As(err, &notFound):
		configErr = fmt.Errorf("failed to read config file: %w", err)
	}
}

// setup applies the shared options before any command runs.
func setup(cmd *cobra.Command, _ []string) (err error) {
	if configErr != nil {
		return configErr
	}
	// usage is only useful for flag errors, which happen before this point
	cmd.SilenceUsage = true

	rootCfg, err = config.NewRoot(viper.GetViper())
	if err != nil {
		return err
	}
	if err := logging.SetLogLevel(rootCfg.LogLevel); err != nil {
		return err
	}
	levels, err := rootCfg.PackageLevels()
	if err != nil {
		return err
	}
	for pkg, level := range levels {
		if err := logging.SetPackageLogLevel(pkg, level); err != nil {
			return err
		}
	}

	paths := profiling.Paths{
		CPU:    rootCfg.CPUProfile,
		Mem:    rootCfg.MemProfile,
		Trace:  rootCfg.Trace,
		Fgprof: rootCfg.FgprofProfile,
	}
	if paths.Enabled() {
		stopProfile, err = profiling.StartProfilers(paths)
		if err != nil {
			return fmt.Errorf("failed to start profilers: %w", err)
		}
	}
	return nil
}
