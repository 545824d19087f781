// Package logging wraps the structured logger used throughout argorun. The
// logger is constructed once in the command layer and passed explicitly to
// every component; there is no package-level default.
package logging

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Level selects the minimum severity that gets emitted.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) toCharmLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case InfoLevel:
		return charmlog.InfoLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Logger is the logging interface components depend on.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Options configures a new Logger.
type Options struct {
	Level  Level
	Output io.Writer
	JSON   bool
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

// New constructs a Logger. A nil-safe default is applied for every zero
// option: info level, stderr output, text formatting.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           opts.Level.toCharmLevel(),
	})
	if opts.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return &charmLogger{l: l}
}

// Discard returns a Logger that drops everything. Used by tests and by
// components that were constructed without an explicit logger.
func Discard() Logger {
	return &charmLogger{l: charmlog.NewWithOptions(io.Discard, charmlog.Options{})}
}
