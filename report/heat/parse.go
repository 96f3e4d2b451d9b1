// Package heat reports the MPI heat transfer solver benchmarks: speedup and
// time bars per grid size, and the cost of the convergence check.
package heat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relab/hpcplot/bench"
)

// DefaultMethod is the method label printed by the Jacobi solver.
const DefaultMethod = "Jacobi"

const number = `[0-9]*\.?[0-9]+`

// Patterns match the result lines printed by one solver method.
type Patterns struct {
	Method string
	mpi    bench.Pattern
	conv   bench.Pattern
	serial bench.Pattern
}

// NewPatterns returns the patterns of the lines printed for method, such as
// Jacobi, GaussSeidelSOR or RedBlackSOR.
func NewPatterns(method string) Patterns {
	m := regexp.QuoteMeta(method)
	mpi := `^` + m + `\s+X\s+(?P<x>\d+)\s+Y\s+(?P<y>\d+)\s+Px\s+(?P<px>\d+)\s+Py\s+(?P<py>\d+)\s+Iter\s+(?P<iter>\d+)\s+` +
		`ComputationTime\s+(?P<comp>` + number + `)\s+TotalTime\s+(?P<total>` + number + `)`
	return Patterns{
		Method: method,
		mpi:    bench.NewPattern(mpi),
		conv:   bench.NewPattern(mpi + `\s+ConvergenceTime\s+(?P<conv>` + number + `)`),
		serial: bench.NewPattern(`^` + m + `\s+X\s+(?P<x>\d+)\s+Y\s+(?P<y>\d+)\s+Iter\s+(?P<iter>\d+)\s+Time\s+(?P<total>` + number + `)`),
	}
}

// Measurement is one solver run.
type Measurement struct {
	X, Y        int
	Procs       int // Px * Py, or 1 for the serial solver
	Iter        int
	Computation float64
	Total       float64
	Convergence float64
}

// Square reports whether the run used a square grid.
func (r Measurement) Square() bool {
	return r.X == r.Y
}

// NonSquareError reports a benchmark line for a non-square grid.
type NonSquareError struct {
	X, Y int
	Line int
}

func (e *NonSquareError) Error() string {
	return fmt.Sprintf("line %d: non-square matrix found: %dx%d", e.Line, e.X, e.Y)
}

// MPI parses a line printed by the MPI solver.
func (p Patterns) MPI(line string) (Measurement, bool) {
	f, ok := p.mpi.Find(strings.TrimSpace(line))
	if !ok {
		return Measurement{}, false
	}
	r := Measurement{
		X:           f.Int("x"),
		Y:           f.Int("y"),
		Procs:       f.Int("px") * f.Int("py"),
		Iter:        f.Int("iter"),
		Computation: f.Float("comp"),
		Total:       f.Float("total"),
	}
	return r, f.Err() == nil
}

// Converged parses a line printed by the MPI solver with the convergence
// check enabled.
func (p Patterns) Converged(line string) (Measurement, bool) {
	f, ok := p.conv.Find(strings.TrimSpace(line))
	if !ok {
		return Measurement{}, false
	}
	r := Measurement{
		X:           f.Int("x"),
		Y:           f.Int("y"),
		Procs:       f.Int("px") * f.Int("py"),
		Iter:        f.Int("iter"),
		Computation: f.Float("comp"),
		Total:       f.Float("total"),
		Convergence: f.Float("conv"),
	}
	return r, f.Err() == nil
}

// Serial parses a line printed by the serial solver.
func (p Patterns) Serial(line string) (Measurement, bool) {
	f, ok := p.serial.Find(strings.TrimSpace(line))
	if !ok {
		return Measurement{}, false
	}
	r := Measurement{
		X:     f.Int("x"),
		Y:     f.Int("y"),
		Procs: 1,
		Iter:  f.Int("iter"),
		Total: f.Float("total"),
	}
	return r, f.Err() == nil
}

// Key identifies the runs that are averaged together.
type Key struct {
	Size  int
	Procs int
}

// Times are the mean times of the runs at one key, in seconds.
type Times struct {
	Total       float64
	Computation float64
	Runs        int
}

// Benchmarks holds the mean times per grid size and process count.
type Benchmarks map[Key]Times

// Procs returns the process counts measured for size, keyed by count.
func (b Benchmarks) Procs(size int) map[int]Times {
	m := make(map[int]Times)
	for k, t := range b {
		if k.Size == size {
			m[k.Procs] = t
		}
	}
	return m
}

// Sizes returns the measured grid sizes.
func (b Benchmarks) Sizes() map[int]bool {
	m := make(map[int]bool)
	for k := range b {
		m[k.Size] = true
	}
	return m
}

// ParseBenchmarks reads the MPI benchmark file at path and averages the
// runs per grid size and process count. A non-square grid or a
// non-positive total time is an error.
func ParseBenchmarks(path string, p Patterns) (Benchmarks, error) {
	groups := bench.NewGroups[Key, Measurement]()
	n := 0
	err := bench.Lines(path, func(line string) error {
		n++
		r, ok := p.MPI(line)
		if !ok {
			return nil
		}
		if !r.Square() {
			return &NonSquareError{X: r.X, Y: r.Y, Line: n}
		}
		if err := bench.CheckTime(n, r.Total); err != nil {
			return err
		}
		groups.Add(Key{Size: r.X, Procs: r.Procs}, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if groups.Len() == 0 {
		return nil, bench.NoInput(fmt.Sprintf("no %s benchmark lines found", p.Method), path)
	}
	b := make(Benchmarks, groups.Len())
	for _, k := range groups.Keys() {
		runs, _ := groups.Get(k)
		total, comp := make([]float64, len(runs)), make([]float64, len(runs))
		for i, r := range runs {
			total[i] = r.Total
			comp[i] = r.Computation
		}
		t := Times{Runs: len(runs)}
		if t.Total, err = bench.Mean(total); err != nil {
			return nil, err
		}
		if t.Computation, err = bench.Mean(comp); err != nil {
			return nil, err
		}
		b[k] = t
	}
	return b, nil
}

// Validate checks that every expected size was measured at every expected
// process count.
func Validate(b Benchmarks, sizes, procs []int) error {
	if err := bench.CheckKeys(bench.Coverage{Name: "sizes in benchmarks", Expected: sizes}, b.Sizes()); err != nil {
		return err
	}
	var errs []error
	for _, size := range sizes {
		c := bench.Coverage{Name: fmt.Sprintf("processes for size %d", size), Expected: procs}
		errs = append(errs, bench.CheckKeys(c, b.Procs(size)))
	}
	return bench.CheckAll(errs...)
}

// Convergence holds the mean times of the runs with the convergence check
// enabled at one grid size and process count.
type Convergence struct {
	Size        int
	Procs       int
	SerialTotal float64
	Total       float64
	Computation float64
	Convergence float64
}

// ParseConvergence reads the convergence validation file at path. Lines for
// other or non-square grids are ignored.
func ParseConvergence(path string, p Patterns, size, procs int) (Convergence, error) {
	var serial []float64
	mpi := bench.NewGroups[int, Measurement]()
	err := bench.Lines(path, func(line string) error {
		if r, ok := p.Serial(line); ok {
			if r.Square() && r.X == size {
				serial = append(serial, r.Total)
			}
			return nil
		}
		r, ok := p.Converged(line)
		if !ok || !r.Square() || r.X != size {
			return nil
		}
		mpi.Add(r.Procs, r)
		return nil
	})
	if err != nil {
		return Convergence{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(serial) == 0 {
		return Convergence{}, bench.NoInput(
			fmt.Sprintf("no %s serial convergence data found for %dx%d", p.Method, size, size), path)
	}
	runs, ok := mpi.Get(procs)
	if !ok {
		return Convergence{}, bench.NoInput(
			fmt.Sprintf("no %s MPI convergence data found for %dx%d with %d processes", p.Method, size, size, procs), path)
	}
	c := Convergence{Size: size, Procs: procs}
	total, comp, conv := make([]float64, len(runs)), make([]float64, len(runs)), make([]float64, len(runs))
	for i, r := range runs {
		total[i], comp[i], conv[i] = r.Total, r.Computation, r.Convergence
	}
	for _, m := range []struct {
		dst    *float64
		values []float64
	}{{&c.SerialTotal, serial}, {&c.Total, total}, {&c.Computation, comp}, {&c.Convergence, conv}} {
		if *m.dst, err = bench.Mean(m.values); err != nil {
			return Convergence{}, err
		}
	}
	return c, nil
}
