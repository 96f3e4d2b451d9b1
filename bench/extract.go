package bench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pattern is a regular expression with named capture groups.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr, panicking if it is invalid.
func NewPattern(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// Regexp returns the underlying regular expression.
func (p Pattern) Regexp() *regexp.Regexp {
	return p.re
}

// Find returns the fields of the leftmost match in s.
// ok is false if s does not match.
func (p Pattern) Find(s string) (f Fields, ok bool) {
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return Fields{}, false
	}
	return Fields{names: p.re.SubexpNames(), groups: m}, true
}

// FindLine is like Find, and also returns the 1-based number of the line
// of s where the match starts.
func (p Pattern) FindLine(s string) (f Fields, line int, ok bool) {
	loc := p.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return Fields{}, 0, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	line = strings.Count(s[:loc[0]], "\n") + 1
	return Fields{names: p.re.SubexpNames(), groups: groups}, line, true
}

// Fields are the submatches of a pattern match.
// The first failed conversion is kept and returned by Err;
// later accessors return zero values.
type Fields struct {
	names  []string
	groups []string
	err    error
}

func (f *Fields) lookup(name string) (string, bool) {
	for i, n := range f.names {
		if n == name && i < len(f.groups) {
			return f.groups[i], true
		}
	}
	return "", false
}

// Has reports whether the named group took part in the match.
func (f *Fields) Has(name string) bool {
	s, ok := f.lookup(name)
	return ok && s != ""
}

// String returns the text of the named group.
func (f *Fields) String(name string) string {
	s, ok := f.lookup(name)
	if !ok && f.err == nil {
		f.err = fmt.Errorf("no capture group %q", name)
	}
	return s
}

// Int returns the named group as an int.
func (f *Fields) Int(name string) int {
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(f.String(name))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %s: %w", name, err)
	}
	return v
}

// Float returns the named group as a float64.
func (f *Fields) Float(name string) float64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(f.String(name), 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %s: %w", name, err)
	}
	return v
}

// Milliseconds returns the named group, read in milliseconds, in seconds.
func (f *Fields) Milliseconds(name string) float64 {
	return f.Float(name) / 1000.0
}

// Err returns the first conversion error.
func (f *Fields) Err() error {
	return f.err
}
