package chat

import (
	"errors"

	"lumi/internal/logging"
	"lumi/internal/transcript"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			// Ignored while a turn is in flight
			if m.busy() {
				return m, nil
			}
			return m.handleSubmit()

		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		if !m.busy() {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpWidth := msg.Width - 4
		vpHeight := msg.Height - headerHeight - inputHeight - footerHeight - statusHeight
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.textinput.Width = msg.Width - 6

		// Rewrap markdown to the new width
		m.renderer = newRenderer(m.styles.Theme, msg.Width-8)
		m.refresh()

	case spinner.TickMsg:
		if m.busy() {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil

	case turnResolvedMsg:
		m.loop.Resolve(msg.reply, msg.err)
		m.refresh()
		m.loop.Rendered()
		m.textinput.Focus()
		return m, nil
	}

	// Cursor blink and other non-key messages reach both components.
	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit records the user turn and starts the relay off the update
// goroutine.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text, err := m.loop.Submit(m.textinput.Value())
	if err != nil {
		if !errors.Is(err, transcript.ErrEmptyInput) {
			logging.UI("submit rejected: %v", err)
		}
		return m, nil
	}

	m.textinput.Reset()
	m.refresh()

	return m, tea.Batch(
		m.spinner.Tick,
		m.relay(text),
	)
}

func (m Model) relay(text string) tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		reply, err := loop.Relay(ctx, text)
		return turnResolvedMsg{reply: reply, err: err}
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
