package logging

import (
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the structured logging contract used across donesync.
// go-logger writes to stdout, so nothing at warn or above is logged here;
// user-facing problems go through the stderr progress writer instead.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	WithFields(fields map[string]any) Logger
}

// Config selects level and output format for the go-logger backend.
type Config struct {
	Level  string
	Format string
}

// New returns a go-logger backed Logger scoped to name.
func New(cfg Config, name string) (Logger, error) {
	options := []glog.Option{glog.WithName(name)}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}

	return adapter{inner: glog.NewLogger(options...)}, nil
}

type backend interface {
	glog.Logger
	glog.FieldsLogger
}

type adapter struct {
	inner backend
}

func (l adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }

func (l adapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	child, ok := l.inner.WithFields(fields).(backend)
	if !ok {
		return l
	}
	return adapter{inner: child}
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...any)               {}
func (noop) Info(string, ...any)                {}
func (n noop) WithFields(map[string]any) Logger { return n }
