package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all Lumi configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Assistant persona (system instruction)
	Persona PersonaConfig `yaml:"persona"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Secret store locations
	Secrets SecretsConfig `yaml:"secrets"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SecretsConfig points at the external secret store.
type SecretsConfig struct {
	// File is a flat YAML map of secret names to values (e.g. API_KEY).
	File string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Lumi",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    DefaultModel,
		},

		Persona: PersonaConfig{
			Name: "Lumi",
		},

		UI: *DefaultUIConfig(),

		Secrets: SecretsConfig{
			File: filepath.Join(".lumi", "secrets.yaml"),
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(".lumi", "logs", "lumi.log"),
		},
	}
}

// ConfigDir returns the directory where config is stored.
func ConfigDir() (string, error) {
	// Prefer project-local .lumi directory if present or creatable
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".lumi")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lumi"), nil
}

// DefaultConfigPath returns the default path to config.yaml.
func DefaultConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(".lumi", "config.yaml")
	}
	return filepath.Join(dir, "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// API keys are resolved through the secret store instead.
func (c *Config) applyEnvOverrides() {
	if model := os.Getenv("LUMI_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv("LUMI_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if theme := os.Getenv("LUMI_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}
	if os.Getenv("LUMI_DARK_MODE") == "1" {
		c.UI.Theme = "dark"
	}
	switch strings.ToLower(os.Getenv("LUMI_DEBUG")) {
	case "1", "true", "yes":
		c.Logging.DebugMode = true
	}
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("LLM model not configured")
	}

	switch c.UI.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("invalid theme: %s (valid: light, dark)", c.UI.Theme)
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}

	return nil
}
