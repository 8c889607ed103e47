// Package obslog configures the process-wide structured logger. It
// mirrors the project's usual log/slog setup but trades request/user
// context fields (meaningless on a connectionless UDP server) for a
// single run_id that ties every log line in a process's lifetime
// together, plus helpers for the dispatcher's per-datagram debug trace.
package obslog

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

var (
	defaultLogger *slog.Logger
	runID         string
)

// Init configures the global logger. level is one of debug/info/warn/error
// (case-insensitive, defaulting to info); format is "json" or "text".
func Init(level, format string) {
	var logLevel slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	runID = uuid.New().String()
	defaultLogger = slog.New(handler).With("run_id", runID)
	slog.SetDefault(defaultLogger)
}

// Get returns the process logger, initializing a sane default (info,
// json) if Init was never called.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("info", "json")
	}
	return defaultLogger
}

// RunID returns the id generated for this process at Init time.
func RunID() string {
	Get()
	return runID
}

// Fatal logs msg at error level and terminates the process with a
// nonzero exit code. Used when the dispatch loop stops on a socket I/O
// failure that leaves the server unable to proceed.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// Request returns a logger annotated with the per-datagram fields used
// for debug-level dispatch tracing: the client address and a
// monotonically increasing sequence number.
func Request(addr string, seq uint64) *slog.Logger {
	return Get().With("addr", addr, "request_seq", seq)
}
