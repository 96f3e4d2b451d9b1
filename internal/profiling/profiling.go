// Package profiling starts and stops the runtime profilers selected on the
// command line.
package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
	"go.uber.org/multierr"
)

// Paths are the output files of the profilers. An empty path disables the
// profiler.
type Paths struct {
	CPU    string
	Mem    string
	Trace  string
	Fgprof string
}

// Enabled reports whether any profiler is selected.
func (p Paths) Enabled() bool {
	return p.CPU != "" || p.Mem != "" || p.Trace != "" || p.Fgprof != ""
}

// StartProfilers starts the selected profilers. The returned function stops
// them, writes the heap profile and closes every output file.
func StartProfilers(p Paths) (stopProfile func() error, err error) {
	var (
		cpuProfile    *os.File
		traceFile     *os.File
		fgprofProfile *os.File
		fgprofStop    func() error
	)
	// close what was opened if a later profiler fails to start
	defer func() {
		if err == nil {
			return
		}
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			multierr.AppendInto(&err, cpuProfile.Close())
		}
		if fgprofProfile != nil {
			multierr.AppendInto(&err, fgprofStop())
			multierr.AppendInto(&err, fgprofProfile.Close())
		}
	}()

	if p.CPU != "" {
		f, err := os.Create(p.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to start cpu profile: %w", err), f.Close())
		}
		cpuProfile = f
	}

	if p.Fgprof != "" {
		fgprofProfile, err = os.Create(p.Fgprof)
		if err != nil {
			return nil, err
		}
		fgprofStop = fgprof.Start(fgprofProfile, fgprof.FormatPprof)
	}

	if p.Trace != "" {
		f, err := os.Create(p.Trace)
		if err != nil {
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to start trace: %w", err), f.Close())
		}
		traceFile = f
	}

	return func() (err error) {
		if p.Mem != "" {
			err = multierr.Append(err, writeHeapProfile(p.Mem))
		}
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			err = multierr.Append(err, cpuProfile.Close())
		}
		if fgprofProfile != nil {
			err = multierr.Append(err, fgprofStop())
			err = multierr.Append(err, fgprofProfile.Close())
		}
		if traceFile != nil {
			trace.Stop()
			err = multierr.Append(err, traceFile.Close())
		}
		return err
	}, nil
}

func writeHeapProfile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	runtime.GC() // get up-to-date statistics
	return pprof.WriteHeapProfile(f)
}
