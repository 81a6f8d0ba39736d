package config

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// LLMConfig configures the remote model provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	Model    string `yaml:"model"`

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string `yaml:"base_url,omitempty"`

	// APIVersion overrides the provider API version (default: v1beta).
	APIVersion string `yaml:"api_version,omitempty"`

	// APIKey is the last-resort credential, consulted after the environment
	// and the secrets file.
	APIKey string `yaml:"api_key,omitempty"`
}

// PersonaConfig configures the assistant persona.
type PersonaConfig struct {
	// Name is the display name used in the transcript and in-band errors.
	Name string `yaml:"name"`

	// SystemPrompt replaces the built-in system instruction when set.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}
