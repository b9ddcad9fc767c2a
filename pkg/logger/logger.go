// Package logger is the process-wide logger used by every wrp module.
//
// Call sites follow a printf style with a bracketed tag:
//
//	logger.Info("[MCP] server %q connected (%d tools)", name, n)
//
// The *X variants attach a module field so log lines can be filtered by
// subsystem.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const moduleKey = "module"

var (
	mu      sync.Mutex
	std     = newDefault()
	logFile *os.File
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// InitLog points the logger at path (stderr when empty) and sets the level.
// Unknown levels fall back to info.
func InitLog(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)

	if path == "" {
		std.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %q: %w", path, err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	std.SetOutput(f)
	return nil
}

// SetLevel changes the level without touching the output.
func SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		std.SetLevel(lvl)
	}
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// IsDebug reports whether debug lines are emitted.
func IsDebug() bool {
	return std.IsLevelEnabled(logrus.DebugLevel)
}

// FlushLog syncs and closes the log file, if any.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
		std.SetOutput(os.Stderr)
	}
}

func Debug(format string, args ...interface{}) { std.Debugf(format, args...) }
func Info(format string, args ...interface{})  { std.Infof(format, args...) }
func Warn(format string, args ...interface{})  { std.Warnf(format, args...) }
func Error(format string, args ...interface{}) { std.Errorf(format, args...) }

func DebugX(module, format string, args ...interface{}) {
	std.WithField(moduleKey, module).Debugf(format, args...)
}

func InfoX(module, format string, args ...interface{}) {
	std.WithField(moduleKey, module).Infof(format, args...)
}

func WarnX(module, format string, args ...interface{}) {
	std.WithField(moduleKey, module).Warnf(format, args...)
}

func ErrorX(module, format string, args ...interface{}) {
	std.WithField(moduleKey, module).Errorf(format, args...)
}
