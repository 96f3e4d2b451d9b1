package bench

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/multierr"
)

// Locator enumerates the files in a directory whose names match a pattern.
// Entries are visited in lexical order; directories and non-matching names
// are skipped.
type Locator struct {
	dir     string
	pattern *regexp.Regexp
	entries []fs.DirEntry
	cur     string
}

// Locate returns a Locator over dir. A missing directory is reported as a
// MissingInputError.
func Locate(dir string, pattern *regexp.Regexp) (*Locator, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NoInput("benchmarks directory not found", dir)
		}
		return nil, err
	}
	return &Locator{dir: dir, pattern: pattern, entries: entries}, nil
}

// Next advances to the next matching file.
func (l *Locator) Next() bool {
	for len(l.entries) > 0 {
		e := l.entries[0]
		l.entries = l.entries[1:]
		if e.IsDir() || !l.pattern.MatchString(e.Name()) {
			continue
		}
		l.cur = filepath.Join(l.dir, e.Name())
		return true
	}
	l.cur = ""
	return false
}

// Path returns the path of the current file.
func (l *Locator) Path() string {
	return l.cur
}

// ReadFile returns the whole content of path. A missing file is reported as
// a MissingInputError.
func ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NoInput("file not found", path)
		}
		return "", err
	}
	return string(b), nil
}

// Lines calls fn for every line of the file at path, in order.
func Lines(path string, fn func(line string) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NoInput("file not found", path)
		}
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// RequireFiles returns an error naming the first path that does not exist.
func RequireFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return NoInput("missing required file", p)
			}
			return err
		}
	}
	return nil
}
