package bench

import "go.uber.org/multierr"

// Coverage is a named set of parameter values that a benchmark run is
// expected to have exercised.
type Coverage struct {
	Name     string
	Expected []int
}

// Check returns a CoverageError listing the expected values missing from
// observed, in the order they were expected.
func (c Coverage) Check(observed func(int) bool) error {
	var missing []int
	for _, v := range c.Expected {
		if !observed(v) {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return &CoverageError{Name: c.Name, Missing: missing}
	}
	return nil
}

// CheckKeys checks c against the keys of m.
func CheckKeys[V any](c Coverage, m map[int]V) error {
	return c.Check(func(v int) bool {
		_, ok := m[v]
		return ok
	})
}

// CheckAll combines the given check results into one error.
func CheckAll(errs ...error) error {
	return multierr.Combine(errs...)
}
