// Package logging provides categorized file-based logging for tweetlab.
// Each category writes to its own date-prefixed file under the configured
// logs directory. When logging is disabled every call is a silent no-op, so
// library code can log unconditionally.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup, config resolution
	CategoryArchive  Category = "archive"  // Archive parsing and flattening
	CategoryFeatures Category = "features" // Feature engineering
	CategoryEval     Category = "eval"     // Model evaluation
	CategoryClassify Category = "classify" // Classification runs
	CategoryAPI      Category = "api"      // LLM API calls
	CategoryStore    Category = "store"    // Dataset store operations
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Config controls logging behavior. It mirrors config.LoggingConfig to
// avoid a circular import.
type Config struct {
	Enabled    bool
	Level      string
	JSONFormat bool
	Dir        string
}

// structuredEntry is the JSON line format used when JSONFormat is set.
type structuredEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger bound to one category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	cfg       Config
	cfgMu     sync.RWMutex
	logLevel  int
)

// Initialize configures the logging system. Call once at startup. When
// cfg.Enabled is false this is a no-op and all loggers stay silent.
func Initialize(c Config) error {
	cfgMu.Lock()
	cfg = c
	switch c.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	cfgMu.Unlock()

	if !c.Enabled {
		return nil
	}
	if c.Dir == "" {
		return fmt.Errorf("logging enabled but no directory configured")
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Boot("=== tweetlab logging initialized ===")
	Boot("logs directory: %s level: %s", c.Dir, c.Level)
	return nil
}

// Enabled reports whether file logging is active.
func Enabled() bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.Enabled
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when logging is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	cfgMu.RLock()
	enabled, dir := cfg.Enabled, cfg.Dir
	cfgMu.RUnlock()
	if !enabled || dir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) emit(level int, tag, format string, args ...interface{}) {
	if l.logger == nil || logLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	cfgMu.RLock()
	jsonFmt := cfg.JSONFormat
	cfgMu.RUnlock()
	if jsonFmt {
		entry := structuredEntry{
			Timestamp: time.Now().UnixMilli(),
			Category:  string(l.category),
			Level:     tag,
			Message:   msg,
		}
		if data, err := json.Marshal(entry); err == nil {
			l.logger.Printf("%s", data)
			return
		}
	}
	l.logger.Printf("[%s] %s", tag, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, "DEBUG", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, "WARN", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LevelError, "ERROR", format, args...)
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions. No-ops when the category is disabled.

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Archive(format string, args ...interface{}) { Get(CategoryArchive).Info(format, args...) }

func ArchiveDebug(format string, args ...interface{}) { Get(CategoryArchive).Debug(format, args...) }

func ArchiveWarn(format string, args ...interface{}) { Get(CategoryArchive).Warn(format, args...) }

func Features(format string, args ...interface{}) { Get(CategoryFeatures).Info(format, args...) }

func FeaturesWarn(format string, args ...interface{}) { Get(CategoryFeatures).Warn(format, args...) }

func Eval(format string, args ...interface{}) { Get(CategoryEval).Info(format, args...) }

func EvalError(format string, args ...interface{}) { Get(CategoryEval).Error(format, args...) }

func Classify(format string, args ...interface{}) { Get(CategoryClassify).Info(format, args...) }

func ClassifyWarn(format string, args ...interface{}) { Get(CategoryClassify).Warn(format, args...) }

func ClassifyError(format string, args ...interface{}) { Get(CategoryClassify).Error(format, args...) }

func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }

func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
