// Package logging provides categorized, zap-backed logging for ferlint.
// Until Initialize or SetLogger is called every category logs to a no-op core,
// so library code and tests stay silent by default.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup, config loading
	CategoryAnalyzer Category = "analyzer" // Pattern analysis runs
	CategoryWorld    Category = "world"    // Source parsing (tree-sitter)
	CategoryTactile  Category = "tactile"  // External command execution
	CategoryWatch    Category = "watch"    // Submission watcher
)

// Config controls how Initialize builds the base logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	// OutputPaths defaults to stderr when empty.
	OutputPaths []string
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the base logger from cfg and replaces any previous one.
func Initialize(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console", "text":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
	case "json":
		zcfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("unknown log format: %s", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	SetLogger(logger)
	return nil
}

// ParseLevel maps a level name onto a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", name, err)
	}
	return level, nil
}

// SetLogger swaps the base logger. Passing nil restores the no-op logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = logger
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Logger returns the base logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Get returns the sugared logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l = base.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}

// Convenience functions for the common categories.

func BootDebug(format string, args ...interface{})     { Get(CategoryBoot).Debugf(format, args...) }
func AnalyzerDebug(format string, args ...interface{}) { Get(CategoryAnalyzer).Debugf(format, args...) }
func WorldDebug(format string, args ...interface{})    { Get(CategoryWorld).Debugf(format, args...) }

func Tactile(format string, args ...interface{})      { Get(CategoryTactile).Infof(format, args...) }
func TactileDebug(format string, args ...interface{}) { Get(CategoryTactile).Debugf(format, args...) }
func TactileWarn(format string, args ...interface{})  { Get(CategoryTactile).Warnf(format, args...) }
func TactileError(format string, args ...interface{}) { Get(CategoryTactile).Errorf(format, args...) }

func Watch(format string, args ...interface{})      { Get(CategoryWatch).Infof(format, args...) }
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debugf(format, args...) }

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
