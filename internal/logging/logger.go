// Package logging provides config-driven categorized logging for Lumi.
// Logs go to a single zap-backed file (default .lumi/logs/lumi.log) so the
// terminal UI is never written over. Logging is controlled by debug_mode in
// the config file: when false, every category is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lumi/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Boot/initialization
	CategorySession    Category = "session"    // Conversation session lifecycle
	CategoryAPI        Category = "api"        // Remote model calls
	CategoryTranscript Category = "transcript" // Turn processing
	CategoryUI         Category = "ui"         // Terminal UI events
	CategoryAudit      Category = "audit"      // Structured audit events
)

// Logger wraps a zap logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	cfg     config.LoggingConfig
	loggers = make(map[Category]*Logger)
)

// Initialize sets up the log file and level from cfg.
// Relative log paths are resolved against workspace. Calling Initialize again
// replaces the previous configuration.
func Initialize(c config.LoggingConfig, workspace string) error {
	CloseAll()

	if !c.DebugMode {
		install(zap.NewNop(), c)
		return nil // Silent no-op in production mode
	}

	path := c.File
	if path == "" {
		path = filepath.Join(".lumi", "logs", "lumi.log")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if c.Level != "" {
		parsed, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		level = parsed
	}

	encoding := c.Format
	if encoding == "" {
		encoding = "json"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zcfg := zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	}

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	install(logger, c)
	Boot("=== Lumi logging initialized ===")
	Boot("Log file: %s", path)
	Boot("Log level: %s", level.String())
	return nil
}

// Use installs an already-built zap logger with every category enabled.
// The CLI uses this for stderr logging in one-shot commands.
func Use(logger *zap.Logger) {
	CloseAll()
	install(logger, config.LoggingConfig{DebugMode: true})
}

func install(logger *zap.Logger, c config.LoggingConfig) {
	mu.Lock()
	defer mu.Unlock()
	base = logger
	cfg = c
	loggers = make(map[Category]*Logger)
}

// IsDebugMode returns whether logging is active.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled checks if logging is enabled for a specific category.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With returns a child logger carrying structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		category: l.category,
		sugar:    l.sugar.Desugar().With(fields...).Sugar(),
	}
}

// Zap exposes the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// CloseAll flushes the active logger. Safe to call repeatedly.
func CloseAll() {
	mu.RLock()
	logger := base
	mu.RUnlock()
	_ = logger.Sync()
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootError logs a boot failure
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// Transcript logs to the transcript category
func Transcript(format string, args ...interface{}) {
	Get(CategoryTranscript).Info(format, args...)
}

// UI logs debug to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}
