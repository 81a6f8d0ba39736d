package config

import (
	"fmt"
	"strings"
)

// LogFormats lists the accepted log encodings.
var LogFormats = []string{"json", "console"}

// LogLevels lists the accepted minimum levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// LoggingConfig controls the log file. Nothing is written unless DebugMode is
// set (or --verbose is passed).
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	File      string `yaml:"file"` // relative paths resolve against the workspace
	DebugMode bool   `yaml:"debug_mode"`

	// Categories switches single categories off; absent means on.
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// IsCategoryEnabled reports whether category writes anything. With DebugMode
// off every category is silent.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if on, listed := c.Categories[category]; listed {
		return on
	}
	return true
}

// Validate checks Level and Format. Empty values take the logger defaults.
func (c LoggingConfig) Validate() error {
	if c.Level != "" && !oneOf(strings.ToLower(c.Level), LogLevels) {
		return fmt.Errorf("invalid log level: %s (valid: %s)", c.Level, strings.Join(LogLevels, ", "))
	}
	if c.Format != "" && !oneOf(c.Format, LogFormats) {
		return fmt.Errorf("invalid log format: %s (valid: %s)", c.Format, strings.Join(LogFormats, ", "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
