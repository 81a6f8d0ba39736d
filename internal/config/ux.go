package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Title is shown in the header above the transcript.
	Title string `yaml:"title"`

	// Placeholder is shown in the empty input line.
	Placeholder string `yaml:"placeholder"`

	// Theme is "light" or "dark".
	Theme string `yaml:"theme"`

	// CharLimit caps a single submission. 0 means no limit.
	CharLimit int `yaml:"char_limit,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Title:       "🤖 Asistente Conversacional Lumi",
		Placeholder: "Escribe tu pregunta o saludo aquí...",
		Theme:       "light",
	}
}

// IsDark reports whether the dark palette is selected.
func (c UIConfig) IsDark() bool {
	return c.Theme == "dark"
}
