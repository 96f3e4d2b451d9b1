// Package logging defines the Logger interface used by the report pipelines.
// It also includes functions for setting the global log level and a per-package log level.
package logging

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logLevel      = zapcore.InfoLevel
	packageLevels = make(map[string]zapcore.Level)
	mut           sync.RWMutex
)

// ParseLevel returns the zap level named by level.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return l, fmt.Errorf("invalid log level '%s'", level)
	}
	return l, nil
}

// SetLogLevel sets the global log level.
func SetLogLevel(levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mut.Lock()
	logLevel = level
	mut.Unlock()
	return nil
}

// SetPackageLogLevel sets a log level for a package, overriding the global level.
func SetPackageLogLevel(packageName, levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mut.Lock()
	packageLevels[packageName] = level
	mut.Unlock()
	return nil
}

// Logger is the logging interface used by the pipelines. It is a subset of zap.SugaredLogger.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

type wrapper struct {
	inner *zap.SugaredLogger
	level zap.AtomicLevel
	mut   sync.Mutex
}

// updateLevel picks the level of the package of the caller of the Logger method.
func (wr *wrapper) updateLevel() {
	mut.RLock()
	defer mut.RUnlock()

	if len(packageLevels) > 0 {
		if _, file, _, ok := runtime.Caller(3); ok {
			for k, v := range packageLevels {
				if strings.Contains(file, k) {
					wr.level.SetLevel(v)
					return
				}
			}
		}
	}
	wr.level.SetLevel(logLevel)
}

func (wr *wrapper) log(fn func()) {
	wr.mut.Lock()
	defer wr.mut.Unlock()
	wr.updateLevel()
	fn()
}

func (wr *wrapper) Debug(args ...interface{}) { wr.log(func() { wr.inner.Debug(args...) }) }
func (wr *wrapper) Info(args ...interface{})  { wr.log(func() { wr.inner.Info(args...) }) }
func (wr *wrapper) Warn(args ...interface{})  { wr.log(func() { wr.inner.Warn(args...) }) }
func (wr *wrapper) Error(args ...interface{}) { wr.log(func() { wr.inner.Error(args...) }) }

func (wr *wrapper) Debugf(template string, args ...interface{}) {
	wr.log(func() { wr.inner.Debugf(template, args...) })
}

func (wr *wrapper) Infof(template string, args ...interface{}) {
	wr.log(func() { wr.inner.Infof(template, args...) })
}

func (wr *wrapper) Warnf(template string, args ...interface{}) {
	wr.log(func() { wr.inner.Warnf(template, args...) })
}

func (wr *wrapper) Errorf(template string, args ...interface{}) {
	wr.log(func() { wr.inner.Errorf(template, args...) })
}

func (wr *wrapper) Infow(msg string, keysAndValues ...interface{}) {
	wr.log(func() { wr.inner.Infow(msg, keysAndValues...) })
}

func (wr *wrapper) Warnw(msg string, keysAndValues ...interface{}) {
	wr.log(func() { wr.inner.Warnw(msg, keysAndValues...) })
}

// New returns a new logger for stderr with the given name.
func New(name string) Logger {
	var config zap.Config
	if strings.ToLower(os.Getenv("HPCPLOT_LOG_TYPE")) == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	mut.RLock()
	config.Level.SetLevel(logLevel)
	mut.RUnlock()
	// skip the wrapper's method, log closure and log helper
	l, err := config.Build(zap.AddCallerSkip(3))
	if err != nil {
		panic(err)
	}
	return &wrapper{inner: l.Sugar().Named(name), level: config.Level}
}

// NewWithDest returns a new logger for the given destination with the given name.
func NewWithDest(dest io.Writer, name string) Logger {
	mut.RLock()
	atom := zap.NewAtomicLevelAt(logLevel)
	mut.RUnlock()
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(dest), atom)
	l := zap.New(core, zap.AddCallerSkip(3))
	return &wrapper{inner: l.Sugar().Named(name), level: atom}
}
