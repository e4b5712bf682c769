// Package log builds the process-wide structured logger.
//
// Without a log file, human-readable text goes to stderr. With one, JSON
// records go to a size-rotated file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time

	closer io.Closer
}

// New returns a logger at the given level ("debug", "info", "warn",
// "error"). An unknown level is reported on stderr and info is used.
func New(level string, file string) *Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: invalid log level, using info\n", level)
	}

	if file == "" {
		return newLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}), "", nil)
	}

	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 256
	}
	return newLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}), w.Filename, w)
}

// NewWriter returns a text logger writing to w. Used by tests and by the
// terminal viewer, which cannot share stderr with the UI.
func NewWriter(w io.Writer, level string) *Logger {
	lvl, _ := ParseLevel(level)
	return newLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}), "", nil)
}

func newLogger(h slog.Handler, file string, closer io.Closer) *Logger {
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: file,
		Start:   time.Now(),
		closer:  closer,
	}

	l.Debug("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))
	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Debug("Build",
			slog.String("Go version", bi.GoVersion),
			slog.String("Path", bi.Path))
	}

	return l
}

// ParseLevel maps a level name to a slog.Level. ok is false for unknown
// names, in which case LevelInfo is returned.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Close flushes and closes the log file, if there is one.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
