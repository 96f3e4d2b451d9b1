package bench

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Groups maps experiment keys to the values recorded under them.
// Keys are remembered in the order they were first added.
type Groups[K comparable, V any] struct {
	keys []K
	m    map[K][]V
}

// NewGroups returns an empty Groups.
func NewGroups[K comparable, V any]() *Groups[K, V] {
	return &Groups[K, V]{m: make(map[K][]V)}
}

// Add appends v to the group for k.
func (g *Groups[K, V]) Add(k K, v V) {
	if _, ok := g.m[k]; !ok {
		g.keys = append(g.keys, k)
	}
	g.m[k] = append(g.m[k], v)
}

// Get returns the values recorded for k.
func (g *Groups[K, V]) Get(k K) (values []V, ok bool) {
	values, ok = g.m[k]
	return
}

// Keys returns the keys in insertion order.
func (g *Groups[K, V]) Keys() []K {
	return slices.Clone(g.keys)
}

// Len returns the number of keys.
func (g *Groups[K, V]) Len() int {
	return len(g.keys)
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyGroup
	}
	return stats.Mean(values), nil
}

// Summary describes a sample of repeated measurements.
type Summary struct {
	Mean   float64
	StdDev float64 // NaN for fewer than two values
	Count  int
}

// Summarize returns the summary of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptyGroup
	}
	sum := Summary{Mean: stats.Mean(values), StdDev: math.NaN(), Count: len(values)}
	if len(values) > 1 {
		sum.StdDev = stats.Sample{Xs: values}.StdDev()
	}
	return sum, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
