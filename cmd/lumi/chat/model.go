// Package chat provides the interactive Lumi chat interface on bubbletea.
package chat

import (
	"context"

	"lumi/cmd/lumi/ui"
	"lumi/internal/transcript"
	"lumi/internal/usage"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const (
	headerHeight = 2 // title + rule
	inputHeight  = 3 // bordered single line
	footerHeight = 2
	statusHeight = 1 // spinner line

	defaultWidth = 80
	userLabel    = "Tú"
)

// Config holds configuration for initializing the chat interface.
type Config struct {
	// Loop is the turn loop the interface drives. Required.
	Loop *transcript.Loop

	Title       string
	Placeholder string
	Theme       string // "light", "dark" or "" for auto-detect
	CharLimit   int

	// Usage feeds the token counter in the footer. Optional.
	Usage *usage.Tracker

	// Context bounds every relayed turn. Nil means context.Background().
	Context context.Context
}

// turnResolvedMsg carries the outcome of a relayed turn back to Update.
type turnResolvedMsg struct {
	reply string
	err   error
}

// Model is the main model for the interactive chat interface
type Model struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	loop   *transcript.Loop
	usage  *usage.Tracker
	ctx    context.Context
	title  string
	width  int
	height int
	ready  bool
}

// New builds the chat model around a loop.
func New(cfg Config) Model {
	styles := ui.NewStyles(ui.ThemeFor(cfg.Theme))

	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = cfg.CharLimit
	ti.Width = defaultWidth
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput.UnsetPaddingLeft()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		textinput: ti,
		viewport:  viewport.New(defaultWidth, 20),
		spinner:   sp,
		styles:    styles,
		loop:      cfg.Loop,
		usage:     cfg.Usage,
		ctx:       ctx,
		title:     cfg.Title,
	}
	m.renderer = newRenderer(styles.Theme, defaultWidth)
	return m
}

// newRenderer returns nil when glamour cannot be built; replies then render
// as plain text.
func newRenderer(theme ui.Theme, width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// busy reports whether a turn is in flight.
func (m Model) busy() bool {
	return m.loop.State() != transcript.AwaitingInput
}
