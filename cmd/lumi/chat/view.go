package chat

import (
	"fmt"
	"strings"

	"lumi/internal/transcript"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, turn := range m.loop.Transcript().Turns() {
		switch turn.Role {
		case transcript.RoleUser:
			sb.WriteString(m.styles.UserLabel.Render(userLabel) + "\n")
			sb.WriteString(m.styles.UserInput.Render(turn.Content))
			sb.WriteString("\n\n")

		default: // assistant
			sb.WriteString(m.styles.AssistantLabel.Render(m.loop.Persona().Name) + "\n")
			sb.WriteString(m.safeRenderMarkdown(turn.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	chatView := m.styles.Content.Render(m.viewport.View())

	status := ""
	if m.busy() {
		status = m.styles.Spinner.Render(m.spinner.View()) + m.styles.Muted.Render(" "+m.loop.Persona().Name+" está pensando...")
	}

	inputArea := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1).
		Render(m.textinput.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		chatView,
		status,
		inputArea,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Header.Render(m.title),
		m.styles.Rule.Render(strings.Repeat("─", width)),
	)
}

func (m Model) renderFooter() string {
	help := "Enter: enviar • ↑/↓ PgUp/PgDn: desplazar • Esc/Ctrl+C: salir"
	if m.usage != nil {
		help += fmt.Sprintf(" • tokens: %d", m.usage.Total().Total)
	}
	return m.styles.Footer.Render(help)
}
