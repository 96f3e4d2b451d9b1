package kmeanscuda

import (
	"fmt"

	"github.com/relab/hpcplot/bench"
	"golang.org/x/exp/slices"
)

var (
	datasetPattern   = bench.NewPattern(`numCoords = (?P<coords>\d+)\s+numClusters = (?P<clusters>\d+)`)
	blockPattern     = bench.NewPattern(`\[Block Size: (?P<block>\d+)\]`)
	runPattern       = bench.NewPattern(`Running kmeans_cuda_(?P<name>[a-z_]+)`)
	cpuPattern       = bench.NewPattern(`t_cpu_avg = (?P<ms>[0-9.]+) ms`)
	gpuPattern       = bench.NewPattern(`t_gpu_avg = (?P<ms>[0-9.]+) ms`)
	transfersPattern = bench.NewPattern(`t_transfers_avg = (?P<ms>[0-9.]+) ms`)
)

// implNames maps the executable suffixes to the implementation names used
// in the timing tables.
var implNames = map[string]string{
	"naive":                   "Naive",
	"transpose":               "Transpose",
	"shared":                  "Shmem",
	"all_gpu":                 "All_GPU",
	"all_gpu_delta_reduction": "All_GPU_Delta_Reduction",
}

// Timing is the time per loop spent in each part of one run, in seconds.
type Timing struct {
	GPU       float64
	Transfers float64
	CPU       float64
}

// Key identifies the runs of one implementation at one block size and
// dataset dimensionality.
type Key struct {
	Coords int
	Impl   string
	Block  int
}

// Sample is one complete run found in the combined log.
type Sample struct {
	Key
	Timing
}

// logState accumulates the context of the combined benchmark log. A sample
// is complete once all three timings follow a run marker.
type logState struct {
	coords   []int
	clusters int

	dataset     bool
	curCoords   int
	curClusters int
	block       int
	haveBlock   bool
	impl        string

	cpu, gpu, transfers       float64
	haveCPU, haveGPU, haveTrf bool
}

func newLogState(coords []int, clusters int) *logState {
	return &logState{coords: coords, clusters: clusters}
}

func (s *logState) resetTimings() {
	s.haveCPU, s.haveGPU, s.haveTrf = false, false, false
}

// feed consumes one line and returns a sample if the line completes one.
func (s *logState) feed(line string) (Sample, bool) {
	if f, ok := datasetPattern.Find(line); ok {
		coords, clusters := f.Int("coords"), f.Int("clusters")
		if f.Err() == nil {
			s.curCoords, s.curClusters, s.dataset = coords, clusters, true
		}
		return Sample{}, false
	}
	if f, ok := blockPattern.Find(line); ok {
		if block := f.Int("block"); f.Err() == nil {
			s.block, s.haveBlock = block, true
		}
		return Sample{}, false
	}
	if f, ok := runPattern.Find(line); ok {
		s.impl = implNames[f.String("name")]
		s.resetTimings()
		return Sample{}, false
	}
	if f, ok := cpuPattern.Find(line); ok {
		if v := f.Milliseconds("ms"); f.Err() == nil {
			s.cpu, s.haveCPU = v, true
		}
	}
	if f, ok := gpuPattern.Find(line); ok {
		if v := f.Milliseconds("ms"); f.Err() == nil {
			s.gpu, s.haveGPU = v, true
		}
	}
	if f, ok := transfersPattern.Find(line); ok {
		if v := f.Milliseconds("ms"); f.Err() == nil {
			s.transfers, s.haveTrf = v, true
		}
	}
	if !s.complete() {
		return Sample{}, false
	}
	sample := Sample{
		Key:    Key{Coords: s.curCoords, Impl: s.impl, Block: s.block},
		Timing: Timing{GPU: s.gpu, Transfers: s.transfers, CPU: s.cpu},
	}
	s.resetTimings()
	return sample, true
}

func (s *logState) complete() bool {
	return s.impl != "" && s.haveCPU && s.haveGPU && s.haveTrf &&
		s.dataset && s.haveBlock &&
		s.curClusters == s.clusters && slices.Contains(s.coords, s.curCoords)
}

// Breakdown holds the mean timings per implementation, block size and
// dataset dimensionality.
type Breakdown map[Key]Timing

// ParseBreakdown reads the combined benchmark log at path, keeping the runs
// on datasets with one of the given coordinate counts and the given number
// of clusters.
func ParseBreakdown(path string, coords []int, clusters int) (Breakdown, error) {
	state := newLogState(coords, clusters)
	groups := bench.NewGroups[Key, Timing]()
	err := bench.Lines(path, func(line string) error {
		if s, ok := state.feed(line); ok {
			groups.Add(s.Key, s.Timing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b := make(Breakdown, groups.Len())
	for _, k := range groups.Keys() {
		runs, _ := groups.Get(k)
		gpu, trf, cpu := make([]float64, len(runs)), make([]float64, len(runs)), make([]float64, len(runs))
		for i, r := range runs {
			gpu[i], trf[i], cpu[i] = r.GPU, r.Transfers, r.CPU
		}
		var t Timing
		for _, m := range []struct {
			dst    *float64
			values []float64
		}{{&t.GPU, gpu}, {&t.Transfers, trf}, {&t.CPU, cpu}} {
			if *m.dst, err = bench.Mean(m.values); err != nil {
				return nil, fmt.Errorf("%+v: %w", k, err)
			}
		}
		b[k] = t
	}
	return b, nil
}

// Blocks returns the block sizes measured for impl on coords.
func (b Breakdown) Blocks(coords int, impl string) map[int]Timing {
	m := make(map[int]Timing)
	for k, t := range b {
		if k.Coords == coords && k.Impl == impl {
			m[k.Block] = t
		}
	}
	return m
}
