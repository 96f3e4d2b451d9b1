package bench

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoInput is wrapped by every error that reports absent input: a missing
// file or directory, or a source that yielded no records.
var ErrNoInput = errors.New("no input")

// ErrEmptyGroup is returned when an aggregate is requested for a group
// without any measurements.
var ErrEmptyGroup = errors.New("empty group")

// MissingInputError names the input that could not be found.
type MissingInputError struct {
	What string // human readable description of the input
	Path string // file, directory or pattern that was searched
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.What, e.Path)
}

// Unwrap returns ErrNoInput.
func (e *MissingInputError) Unwrap() error {
	return ErrNoInput
}

// NoInput returns a MissingInputError.
func NoInput(what, path string) error {
	return &MissingInputError{What: what, Path: path}
}

// CoverageError lists the expected parameter values that were never observed.
type CoverageError struct {
	Name    string
	Missing []int
}

func (e *CoverageError) Error() string {
	vals := make([]string, len(e.Missing))
	for i, v := range e.Missing {
		vals[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("missing %s: [%s]", e.Name, strings.Join(vals, ", "))
}

// InvalidTimeError reports a time that is zero, negative or not a number.
// Speedups divide by times, so such values are rejected when read.
type InvalidTimeError struct {
	Line  int
	Value float64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("line %d: non-positive time %g", e.Line, e.Value)
}

// CheckTime returns an InvalidTimeError unless t is positive.
func CheckTime(line int, t float64) error {
	if !(t > 0) {
		return &InvalidTimeError{Line: line, Value: t}
	}
	return nil
}
