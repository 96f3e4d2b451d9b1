package heat_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/relab/hpcplot/bench"
	"github.com/relab/hpcplot/internal/mocks"
	"github.com/relab/hpcplot/logging"
	"github.com/relab/hpcplot/plotting"
	"github.com/relab/hpcplot/report/heat"
)

func mpiLine(method string, size, px, py int, comp, total float64) string {
	return fmt.Sprintf("%s X %d Y %d Px %d Py %d Iter 256 ComputationTime %g TotalTime %g midpoint 5.1\n",
		method, size, size, px, py, comp, total)
}

// benchmarkFile writes a file with one run per size and process count.
// The total time is 10 / procs and the computation time 8 / procs.
func benchmarkFile(t *testing.T, sizes, procs []int, skip func(size, procs int) bool) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("some header\n")
	for _, s := range sizes {
		for _, p := range procs {
			if skip != nil && skip(s, p) {
				continue
			}
			b.WriteString(mpiLine("Jacobi", s, p, 1, 8/float64(p), 10/float64(p)))
		}
	}
	return writeFile(t, "results_benchmark.txt", b.String())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const convergenceContent = `Jacobi X 512 Y 512 Iter 1000 Time 4.5
Jacobi X 512 Y 256 Iter 1000 Time 99
Jacobi X 512 Y 512 Iter 1000 Time 5.5
Jacobi X 512 Y 512 Px 8 Py 8 Iter 1000 ComputationTime 0.2 TotalTime 0.5 ConvergenceTime 0.1 midpoint 1
Jacobi X 512 Y 512 Px 8 Py 8 Iter 1000 ComputationTime 0.4 TotalTime 0.7 ConvergenceTime 0.3 midpoint 1
Jacobi X 1024 Y 1024 Px 8 Py 8 Iter 1000 ComputationTime 9 TotalTime 9 ConvergenceTime 9 midpoint 1
Jacobi X 512 Y 512 Px 4 Py 4 Iter 1000 ComputationTime 9 TotalTime 9 ConvergenceTime 9 midpoint 1
`

func TestPatternsMethod(t *testing.T) {
	line := "  RedBlackSOR X 64 Y 64 Px 2 Py 4 Iter 10 ComputationTime 1.5 TotalTime 2.25 midpoint 3.0"
	if _, ok := heat.NewPatterns(heat.DefaultMethod).MPI(line); ok {
		t.Error("Jacobi pattern matched a RedBlackSOR line")
	}
	got, ok := heat.NewPatterns("RedBlackSOR").MPI(line)
	if !ok {
		t.Fatal("RedBlackSOR pattern did not match")
	}
	want := heat.Measurement{X: 64, Y: 64, Procs: 8, Iter: 10, Computation: 1.5, Total: 2.25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MPI() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBenchmarksAverages(t *testing.T) {
	path := writeFile(t, "bench.txt",
		mpiLine("Jacobi", 2048, 1, 1, 9, 10)+
			mpiLine("Jacobi", 2048, 1, 1, 11, 12)+
			mpiLine("Jacobi", 2048, 2, 4, 1.5, 2)+
			"Jacobi X 2048 Y 2048 garbage\n")
	got, err := heat.ParseBenchmarks(path, heat.NewPatterns(heat.DefaultMethod))
	if err != nil {
		t.Fatal(err)
	}
	want := heat.Benchmarks{
		{Size: 2048, Procs: 1}: {Total: 11, Computation: 10, Runs: 2},
		{Size: 2048, Procs: 8}: {Total: 2, Computation: 1.5, Runs: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("ParseBenchmarks() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBenchmarksNonSquare(t *testing.T) {
	path := writeFile(t, "bench.txt", mpiLine("Jacobi", 2048, 1, 1, 1, 1)+
		"Jacobi X 2048 Y 1024 Px 1 Py 1 Iter 1 ComputationTime 1 TotalTime 1\n")
	_, err := heat.ParseBenchmarks(path, heat.NewPatterns(heat.DefaultMethod))
	var nsErr *heat.NonSquareError
	if !errors.As(err, &nsErr) {
		t.Fatalf("ParseBenchmarks() error = %v, want NonSquareError", err)
	}
	if nsErr.Line != 2 || nsErr.X != 2048 || nsErr.Y != 1024 {
		t.Errorf("unexpected error: %+v", nsErr)
	}
}

func TestParseBenchmarksZeroTime(t *testing.T) {
	path := writeFile(t, "bench.txt", mpiLine("Jacobi", 2048, 1, 1, 8, 10)+mpiLine("Jacobi", 2048, 2, 1, 0, 0))
	_, err := heat.ParseBenchmarks(path, heat.NewPatterns(heat.DefaultMethod))
	var timeErr *bench.InvalidTimeError
	if !errors.As(err, &timeErr) || timeErr.Line != 2 {
		t.Fatalf("ParseBenchmarks() error = %v, want InvalidTimeError at line 2", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestParseBenchmarksNoInput(t *testing.T) {
	p := heat.NewPatterns(heat.DefaultMethod)
	path := writeFile(t, "bench.txt", mpiLine("RedBlackSOR", 2048, 1, 1, 1, 1))
	if _, err := heat.ParseBenchmarks(path, p); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("ParseBenchmarks(no lines) error = %v, want ErrNoInput", err)
	}
	if _, err := heat.ParseBenchmarks(filepath.Join(t.TempDir(), "absent.txt"), p); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("ParseBenchmarks(missing file) error = %v, want ErrNoInput", err)
	}
}

func TestSpeedups(t *testing.T) {
	times := map[int]heat.Times{1: {Total: 10}, 2: {Total: 6}, 8: {Total: 2}}
	got := heat.Speedups([]int{1, 2, 8}, times)
	want := []bench.Point{{X: 1, Y: 1}, {X: 2, Y: 10.0 / 6.0}, {X: 8, Y: 5}}
	if diff := cmp.Diff(want, got.Points, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Speedups() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	sizes := []int{2048, 4096}
	procs := []int{1, 2, 4}
	path := benchmarkFile(t, sizes, procs, func(size, procs int) bool { return size == 4096 && procs == 4 })
	b, err := heat.ParseBenchmarks(path, heat.NewPatterns(heat.DefaultMethod))
	if err != nil {
		t.Fatal(err)
	}
	err = heat.Validate(b, sizes, procs)
	if err == nil || err.Error() != "missing processes for size 4096: [4]" {
		t.Errorf("Validate() error = %v", err)
	}
	err = heat.Validate(b, []int{2048, 6144}, procs)
	var covErr *bench.CoverageError
	if !errors.As(err, &covErr) || !cmp.Equal(covErr.Missing, []int{6144}) {
		t.Errorf("Validate() error = %v, want missing size 6144", err)
	}
	if err := heat.Validate(b, []int{2048}, procs); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseConvergence(t *testing.T) {
	path := writeFile(t, "validate_output.txt", convergenceContent)
	p := heat.NewPatterns(heat.DefaultMethod)
	got, err := heat.ParseConvergence(path, p, 512, 64)
	if err != nil {
		t.Fatal(err)
	}
	want := heat.Convergence{Size: 512, Procs: 64, SerialTotal: 5, Total: 0.6, Computation: 0.3, Convergence: 0.2}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("ParseConvergence() mismatch (-want +got):\n%s", diff)
	}

	if _, err := heat.ParseConvergence(path, p, 512, 32); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("ParseConvergence(32 procs) error = %v, want ErrNoInput", err)
	}
	if _, err := heat.ParseConvergence(path, p, 1024, 64); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("ParseConvergence(no serial run) error = %v, want ErrNoInput", err)
	}
}

func testOptions(t *testing.T, benchmarks string) heat.Options {
	opts := heat.DefaultOptions(t.TempDir())
	opts.Benchmarks = benchmarks
	opts.Convergence = writeFile(t, "validate_output.txt", convergenceContent)
	opts.OutDir = filepath.Join(t.TempDir(), "out")
	return opts
}

func TestRunMissingCoverageWritesNothing(t *testing.T) {
	defaults := heat.DefaultOptions("")
	path := benchmarkFile(t, defaults.Sizes, defaults.Procs, func(size, procs int) bool { return size == 6144 && procs == 32 })
	opts := testOptions(t, path)

	// no expectations: any render call fails the test
	r := mocks.NewMockRenderer(gomock.NewController(t))
	_, err := heat.Run(opts, r, logging.NewWithDest(&bytes.Buffer{}, "heat"))

	var covErr *bench.CoverageError
	if !errors.As(err, &covErr) || !cmp.Equal(covErr.Missing, []int{32}) {
		t.Fatalf("Run() error = %v, want missing process count 32", err)
	}
	if _, err := os.Stat(opts.OutDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output directory was created: %v", err)
	}
}

func TestRunBadConvergenceWritesNothing(t *testing.T) {
	defaults := heat.DefaultOptions("")
	opts := testOptions(t, benchmarkFile(t, defaults.Sizes, defaults.Procs, nil))
	opts.ConvProcs = 32

	r := mocks.NewMockRenderer(gomock.NewController(t))
	if _, err := heat.Run(opts, r, logging.NewWithDest(&bytes.Buffer{}, "heat")); !errors.Is(err, bench.ErrNoInput) {
		t.Fatalf("Run() error = %v, want ErrNoInput", err)
	}
	if _, err := os.Stat(opts.OutDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output directory was created: %v", err)
	}
}

func TestRun(t *testing.T) {
	defaults := heat.DefaultOptions("")
	opts := testOptions(t, benchmarkFile(t, defaults.Sizes, defaults.Procs, nil))

	r := mocks.NewMockRenderer(gomock.NewController(t))
	charts := make(map[string]plotting.BarChart)
	r.EXPECT().Bars(gomock.Any(), gomock.Any()).Times(3 + 3*4 + 1).DoAndReturn(func(path string, c plotting.BarChart) error {
		charts[filepath.Base(path)] = c
		return nil
	})
	written, err := heat.Run(opts, r, logging.NewWithDest(&bytes.Buffer{}, "heat"))
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 16 {
		t.Errorf("Run() wrote %d files, want 16", len(written))
	}

	sp, ok := charts["jacobi_speedup_2048.png"]
	if !ok {
		t.Fatal("missing speedup chart")
	}
	if diff := cmp.Diff([]string{"1", "2", "4", "8", "16", "32", "64"}, sp.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 4, 8, 16, 32, 64}, sp.Values, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("speedups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 1, 1, 1, 1, 1}, sp.Class); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}

	// every time chart of a size shares the Y limit of the 8 process run
	for _, procs := range defaults.BarProcs {
		c, ok := charts[fmt.Sprintf("jacobi_times_4096_p%d.png", procs)]
		if !ok {
			t.Fatalf("missing time chart for %d processes", procs)
		}
		if want := 10.0 / 8 * 1.1; c.YMax < want-1e-9 || c.YMax > want+1e-9 {
			t.Errorf("p%d: YMax = %v, want %v", procs, c.YMax, want)
		}
	}

	conv, ok := charts["jacobi_convergence_512_p64.png"]
	if !ok {
		t.Fatal("missing convergence chart")
	}
	if diff := cmp.Diff([]float64{0.6, 0.3, 0.2}, conv.Values, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("convergence values mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRendersPNG(t *testing.T) {
	opts := testOptions(t, benchmarkFile(t, []int{2048}, []int{1, 64}, nil))
	opts.Sizes = []int{2048}
	opts.Procs = []int{1, 64}
	opts.BarProcs = []int{64}
	opts.Method = "Jacobi"

	written, err := heat.Run(opts, plotting.Gonum{DPI: 40}, logging.NewWithDest(&bytes.Buffer{}, "heat"))
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range written {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	if len(written) != 3 {
		t.Errorf("Run() wrote %v", written)
	}
}
