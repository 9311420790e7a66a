// Package logger is the diagnostic channel of sitectl.
//
// Messages go to stderr so they never mix with the user-facing output on
// stdout (see the output package) or with --json documents. By default only
// WARN and ERROR are printed; --verbose lowers the threshold to DEBUG.
//
// A provisioning step that fails without halting the run is reported here at
// WARN, so the operator still sees adduser or chown complaints even though the
// run goes on.
//
// Line format:
//
//	[WARN] 2026-10-17 09:12:44 step failed domain=example.com step=create-user
//
// Fields are sorted by key.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields are key=value pairs appended to a log line.
type Fields map[string]interface{}

// Logger writes leveled lines to a writer. It is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	now    func() time.Time
}

// New returns a Logger writing to w at the given threshold. A nil w means
// os.Stderr.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{level: level, output: w, now: time.Now}
}

var std = New(os.Stderr, LevelWarn)

// Default returns the process-wide logger.
func Default() *Logger {
	return std
}

// Init sets the process-wide threshold from the --verbose flag.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// SetLevel sets the process-wide threshold.
func SetLevel(level Level) {
	std.SetLevel(level)
}

// GetLevel returns the process-wide threshold.
func GetLevel() Level {
	return std.Level()
}

// SetOutput redirects the process-wide logger; nil restores os.Stderr.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
}

func (l *Logger) write(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(msg)
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	ts := l.now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(l.output, "[%s] %s %s\n", level, ts, b.String())
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...), nil)
}

// Log writes msg with structured fields at level.
func (l *Logger) Log(level Level, msg string, fields Fields) {
	l.write(level, msg, fields)
}
