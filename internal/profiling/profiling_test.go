package profiling_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relab/hpcplot/internal/profiling"
)

func TestStartProfilers(t *testing.T) {
	dir := t.TempDir()
	paths := profiling.Paths{
		CPU:    filepath.Join(dir, "cpu.prof"),
		Mem:    filepath.Join(dir, "mem.prof"),
		Trace:  filepath.Join(dir, "trace.out"),
		Fgprof: filepath.Join(dir, "fgprof.prof"),
	}
	if !paths.Enabled() {
		t.Fatal("expected profiling to be enabled")
	}
	stop, err := profiling.StartProfilers(paths)
	if err != nil {
		t.Fatal(err)
	}
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{paths.CPU, paths.Mem, paths.Trace, paths.Fgprof} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s: expected a non-empty profile, got %v", filepath.Base(p), err)
		}
	}
}

func TestStartProfilersBadPath(t *testing.T) {
	_, err := profiling.StartProfilers(profiling.Paths{
		CPU:   filepath.Join(t.TempDir(), "cpu.prof"),
		Trace: filepath.Join(t.TempDir(), "missing", "trace.out"),
	})
	if err == nil {
		t.Fatal("expected an error for an unwritable trace path")
	}
	// the cpu profile must have been stopped
	stop, err := profiling.StartProfilers(profiling.Paths{CPU: filepath.Join(t.TempDir(), "cpu.prof")})
	if err != nil {
		t.Fatalf("cpu profile still running: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatal(err)
	}
}

func TestNoProfilers(t *testing.T) {
	var paths profiling.Paths
	if paths.Enabled() {
		t.Error("zero Paths should not enable profiling")
	}
	stop, err := profiling.StartProfilers(paths)
	if err != nil {
		t.Fatal(err)
	}
	if err := stop(); err != nil {
		t.Error(err)
	}
}
