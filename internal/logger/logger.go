// Package logger provides leveled diagnostics for the docugen CLI.
//
// Warnings and errors are always written. Debug, info and section output
// appears only with --verbose and traces the ingest and generation
// pipelines. All output goes to stderr so stdout stays machine-readable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed before the message.
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
		return "LOG"
	}
}

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables debug and info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes each line with the elapsed wall-clock time when on.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the writer for all log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether a line at level would be written.
func Enabled(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= LevelWarn || verbose
}

func logf(level Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level < LevelWarn && !verbose {
		return
	}
	prefix := "[" + level.String() + "] "
	if timestamps {
		prefix = now().Format("15:04:05.000") + " " + prefix
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints pipeline detail in verbose mode.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info prints progress in verbose mode.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn prints a non-fatal problem such as a provider fallback.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error prints a failure that did not stop the command.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a pipeline stage header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
