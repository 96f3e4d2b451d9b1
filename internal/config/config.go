// Package config builds the typed options of each report from viper.
//
// Every sub-command binds its flags under a key prefix named after the
// command, so a config file may carry one section per report:
//
//	base-dir: /home/me/assignment
//	heat:
//	  method: RedBlackSOR
//	  procs: [1, 2, 4, 8]
//	kmeanscuda:
//	  variants:
//	    - coords: 32
//	      impls: [Naive, Shmem]
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/relab/hpcplot/plotting"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Formats are the supported output file extensions.
var Formats = []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps", "csv"}

// Root holds the options shared by all reports.
type Root struct {
	BaseDir string
	DPI     int
	Format  string

	LogLevel string
	LogPkgs  []string

	CPUProfile    string
	MemProfile    string
	Trace         string
	FgprofProfile string
}

// NewRoot reads the shared options.
func NewRoot(v *viper.Viper) (Root, error) {
	cfg := Root{
		BaseDir:       v.GetString("base-dir"),
		DPI:           v.GetInt("dpi"),
		Format:        strings.ToLower(strings.TrimPrefix(v.GetString("format"), ".")),
		LogLevel:      v.GetString("log-level"),
		LogPkgs:       v.GetStringSlice("log-pkgs"),
		CPUProfile:    v.GetString("cpu-profile"),
		MemProfile:    v.GetString("mem-profile"),
		Trace:         v.GetString("trace"),
		FgprofProfile: v.GetString("fgprof-profile"),
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	if !slices.Contains(Formats, cfg.Format) {
		return Root{}, fmt.Errorf("unsupported output format %q", cfg.Format)
	}
	if cfg.DPI <= 0 {
		return Root{}, fmt.Errorf("dpi must be positive, got %d", cfg.DPI)
	}
	return cfg, nil
}

// PackageLevels splits the package:level pairs of the log-pkgs option.
func (r Root) PackageLevels() (map[string]string, error) {
	levels := make(map[string]string, len(r.LogPkgs))
	for _, pl := range r.LogPkgs {
		parts := strings.Split(pl, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("log-pkgs must be a comma-separated list of package:level strings, got %q", pl)
		}
		levels[parts[0]] = parts[1]
	}
	return levels, nil
}

// Renderer returns the chart renderer configured by r.
func (r Root) Renderer() plotting.Renderer {
	return plotting.Gonum{DPI: r.DPI}
}

// section reads the keys of one command.
type section struct {
	v      *viper.Viper
	prefix string
}

func (s section) key(name string) string {
	return s.prefix + "." + name
}

func (s section) string(name string, dst *string) {
	if k := s.key(name); s.v.IsSet(k) && s.v.GetString(k) != "" {
		*dst = s.v.GetString(k)
	}
}

func (s section) int(name string, dst *int) {
	if k := s.key(name); s.v.IsSet(k) {
		*dst = s.v.GetInt(k)
	}
}

func (s section) ints(name string, dst *[]int) {
	if k := s.key(name); s.v.IsSet(k) {
		*dst = s.v.GetIntSlice(k)
	}
}

// path reads a path, cleaned.
func (s section) path(name string, dst *string) {
	s.string(name, dst)
	*dst = filepath.Clean(*dst)
}

func nonEmpty(name string, values []int) error {
	if len(values) == 0 {
		return fmt.Errorf("%s must not be empty", name)
	}
	return nil
}
