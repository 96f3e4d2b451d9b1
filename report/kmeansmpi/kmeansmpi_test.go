package kmeansmpi_test

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
	"github.com/relab/hpcplot/report/kmeansmpi"
)

const header = `dataset_size = 256.00 MB    numObjs = 2097152    numCoords = 16    numClusters = 32
nloops = 10
`

func benchmarkDir(t *testing.T, procs []int, skip int) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range procs {
		if p == skip {
			continue
		}
		content := header + fmt.Sprintf("nprocs = %d   total = %.4fs   per loop = 0.1s\n", p, 64/float64(p))
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("kmeans_np%d.txt", p)), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestParseDataset(t *testing.T) {
	got := kmeansmpi.ParseDataset(header)
	want := &kmeansmpi.Dataset{SizeMB: "256.00", Objs: 2097152, Coords: 16, Clusters: 32, Loops: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDataset() mismatch (-want +got):\n%s", diff)
	}
	if s := got.String(); s != "Config: Size=256.00 MB, Objs=2097152, Coords=16, Clusters=32, Loops=10" {
		t.Errorf("String() = %q", s)
	}
	unknown := kmeansmpi.ParseDataset("nloops = 10\n")
	if unknown != nil {
		t.Fatalf("ParseDataset() = %+v, want nil", unknown)
	}
	if s := unknown.String(); s != "Config: (unknown)" {
		t.Errorf("String() = %q", s)
	}
}

func TestParseTotal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantOK  bool
		wantErr bool
	}{
		{in: "total = 12.5s", want: 12.5, wantOK: true},
		{in: "total=.25s", want: 0.25, wantOK: true},
		{in: "nprocs = 4   total = 3s", want: 3, wantOK: true},
		{in: "total = 12.5 ms"},
		{in: "no timings"},
		{in: "nloops = 10\ntotal = 0.0s", wantOK: true, wantErr: true},
	}
	for _, tt := range tests {
		got, ok, err := kmeansmpi.ParseTotal(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTotal(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseTotal(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCollectZeroTotal(t *testing.T) {
	dir := benchmarkDir(t, []int{1, 2}, 0)
	if err := os.WriteFile(filepath.Join(dir, "kmeans_np4.txt"), []byte(header+"nprocs = 4   total = 0s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := kmeansmpi.Collect(dir, logging.NewWithDest(&bytes.Buffer{}, "kmeansmpi"))
	var timeErr *bench.InvalidTimeError
	if !errors.As(err, &timeErr) || timeErr.Line != 3 {
		t.Fatalf("Collect() error = %v, want InvalidTimeError at line 3", err)
	}
	if !strings.Contains(err.Error(), "kmeans_np4.txt") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestCollect(t *testing.T) {
	dir := benchmarkDir(t, []int{1, 2, 4}, 0)
	for name, content := range map[string]string{
		"kmeans_np8.txt":     "crashed\n",
		"kmeans_np16.txt.gz": "",
		"kmeans_npX.txt":     "total = 1s",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	got, err := kmeansmpi.Collect(dir, logging.NewWithDest(&buf, "kmeansmpi"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]float64{1: 64, 2: 32, 4: 16}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "kmeans_np8.txt") {
		t.Errorf("missing warning for file without total: %q", buf.String())
	}
}

func TestCollectNoInput(t *testing.T) {
	logger := logging.NewWithDest(&bytes.Buffer{}, "kmeansmpi")
	if _, err := kmeansmpi.Collect(t.TempDir(), logger); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("Collect(empty dir) error = %v, want ErrNoInput", err)
	}
	if _, err := kmeansmpi.Collect(filepath.Join(t.TempDir(), "absent"), logger); !errors.Is(err, bench.ErrNoInput) {
		t.Errorf("Collect(missing dir) error = %v, want ErrNoInput", err)
	}
}

func TestRunMissingProcsWritesNothing(t *testing.T) {
	opts := kmeansmpi.DefaultOptions(t.TempDir())
	opts.Benchmarks = benchmarkDir(t, opts.Procs, 16)
	opts.OutDir = filepath.Join(t.TempDir(), "out")

	r := mocks.NewMockRenderer(gomock.NewController(t))
	_, err := kmeansmpi.Run(opts, r, logging.NewWithDest(&bytes.Buffer{}, "kmeansmpi"))
	if err == nil || err.Error() != "missing benchmarks for processes: [16]" {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(opts.OutDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output directory was created: %v", err)
	}
}

func TestRun(t *testing.T) {
	opts := kmeansmpi.DefaultOptions(t.TempDir())
	opts.Benchmarks = benchmarkDir(t, opts.Procs, 0)
	opts.OutDir = filepath.Join(t.TempDir(), "out")

	r := mocks.NewMockRenderer(gomock.NewController(t))
	charts := make(map[string]plotting.BarChart)
	r.EXPECT().Bars(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(path string, c plotting.BarChart) error {
		charts[filepath.Base(path)] = c
		return nil
	})
	if _, err := kmeansmpi.Run(opts, r, logging.NewWithDest(&bytes.Buffer{}, "kmeansmpi")); err != nil {
		t.Fatal(err)
	}

	wantLabels := []string{"Sequential", "2", "4", "8", "16", "32", "64"}
	tm := charts["kmeans_time.png"]
	if diff := cmp.Diff(wantLabels, tm.Categories); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{64, 32, 16, 8, 4, 2, 1}, tm.Values); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(tm.Title, "\nConfig: Size=256.00 MB, Objs=2097152, Coords=16, Clusters=32, Loops=10") {
		t.Errorf("unexpected title %q", tm.Title)
	}
	sp := charts["kmeans_speedup.png"]
	if diff := cmp.Diff([]float64{1, 2, 4, 8, 16, 32, 64}, sp.Values, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("speedups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 1, 1, 1, 1, 1}, sp.Class); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRendersPNG(t *testing.T) {
	opts := kmeansmpi.DefaultOptions(t.TempDir())
	opts.Procs = []int{1, 4}
	opts.Benchmarks = benchmarkDir(t, opts.Procs, 0)
	opts.OutDir = t.TempDir()
	written, err := kmeansmpi.Run(opts, plotting.Gonum{DPI: 40}, logging.NewWithDest(&bytes.Buffer{}, "kmeansmpi"))
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range written {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
}
