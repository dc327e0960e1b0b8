// Package logging provides the leveled logger shared by all tagfs components.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level controls logging verbosity.
type Level int32

const (
	// LevelError only logs errors
	LevelError Level = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[Level]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// ParseLevel converts a level name to a Level. The second return value
// reports whether the name was recognized.
func ParseLevel(name string) (Level, bool) {
	for level, levelName := range levelNames {
		if strings.EqualFold(name, levelName) {
			return level, true
		}
	}
	return LevelInfo, false
}

// Logger writes leveled, prefixed log lines. Loggers derived with
// WithPrefix share their parent's level, so raising verbosity on the
// root logger raises it everywhere.
type Logger struct {
	level  *atomic.Int32
	prefix string
	logger *log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the process-wide root logger. The initial level comes
// from the LOG_LEVEL environment variable, defaulting to INFO.
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("TAGFS")
		if name := os.Getenv("LOG_LEVEL"); name != "" {
			if level, ok := ParseLevel(name); ok {
				defaultLogger.SetLevel(level)
			}
		}
	})
	return defaultLogger
}

// NewLogger creates a root logger with the given prefix.
func NewLogger(prefix string) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC
	if os.Getenv("LOG_LONGFILE") != "" {
		flags |= log.Llongfile
	} else {
		flags |= log.Lshortfile
	}

	l := &Logger{
		level:  new(atomic.Int32),
		prefix: prefix,
		logger: log.New(os.Stdout, prefix+": ", flags),
	}
	l.SetLevel(LevelInfo)
	return l
}

// WithPrefix derives a logger whose lines carry an additional component
// prefix. The derived logger shares the parent's level.
func (l *Logger) WithPrefix(prefix string) *Logger {
	combined := l.prefix + "/" + prefix
	return &Logger{
		level:  l.level,
		prefix: combined,
		logger: log.New(os.Stdout, combined+": ", l.logger.Flags()),
	}
}

// SetLevel sets the logging level for this logger and everything derived
// from it.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level > l.Level() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if err := l.logger.Output(3, fmt.Sprintf("[%s] %s", levelNames[level], msg)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log message: %v\n", err)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}
