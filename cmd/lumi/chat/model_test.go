package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lumi/internal/config"
	"lumi/internal/prompt"
	"lumi/internal/session"
	"lumi/internal/transcript"
	"lumi/internal/usage"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	reply string
	err   error
	sent  []string
}

func (f *fakeSender) Send(_ context.Context, text string) (string, error) {
	f.sent = append(f.sent, text)
	return f.reply, f.err
}

func newTestModel(t *testing.T, sender transcript.Sender) Model {
	t.Helper()
	t.Setenv("LUMI_DARK_MODE", "")
	t.Setenv("COLORFGBG", "")

	m := New(Config{
		Loop:        transcript.NewLoop(sender, prompt.Default()),
		Title:       "🤖 Asistente Conversacional Lumi",
		Placeholder: "Escribe tu pregunta o saludo aquí...",
		Theme:       "light",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func resolved(t *testing.T, msgs []tea.Msg) turnResolvedMsg {
	t.Helper()
	for _, msg := range msgs {
		if r, ok := msg.(turnResolvedMsg); ok {
			return r
		}
	}
	t.Fatalf("no turnResolvedMsg in %v", msgs)
	return turnResolvedMsg{}
}

func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.textinput.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestView_BeforeWindowSize(t *testing.T) {
	m := New(Config{Loop: transcript.NewLoop(&fakeSender{}, prompt.Default())})
	assert.Equal(t, "Initializing...", m.View())
}

func TestView_HeaderAndPlaceholder(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	view := m.View()
	assert.Contains(t, view, "🤖 Asistente Conversacional Lumi")
	assert.Contains(t, view, "─")
	assert.Contains(t, view, "Escribe tu pregunta o saludo aquí...")
}

func TestUpdate_FullTurn(t *testing.T) {
	sender := &fakeSender{reply: "Hola"}
	m := newTestModel(t, sender)

	m, cmd := submit(t, m, "  hola  ")
	require.NotNil(t, cmd)

	// The user turn is visible while the reply is pending.
	assert.Equal(t, transcript.Sending, m.loop.State())
	assert.Empty(t, m.textinput.Value())
	assert.Equal(t, 1, m.loop.Transcript().Len())
	assert.Contains(t, m.View(), "Tú")

	msg := resolved(t, collect(cmd))
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.Equal(t, transcript.AwaitingInput, m.loop.State())
	assert.Equal(t, []string{"hola"}, sender.sent)

	turns := m.loop.Transcript().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, transcript.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Hola", turns[1].Content)

	history := m.renderHistory()
	assert.Contains(t, history, "Tú")
	assert.Contains(t, history, "Lumi")
	assert.Contains(t, history, "Hola")
}

func TestUpdate_FailureRendersApology(t *testing.T) {
	sender := &fakeSender{err: &session.SendError{Cause: errors.New("timeout")}}
	m := newTestModel(t, sender)
	m.renderer = nil

	m, cmd := submit(t, m, "resume esto")
	updated, _ := m.Update(resolved(t, collect(cmd)))
	m = updated.(Model)

	assert.Contains(t, m.renderHistory(), "Lumi: Disculpa, hubo un error al procesar tu solicitud. Error: timeout")
	assert.Equal(t, transcript.AwaitingInput, m.loop.State())
}

func TestUpdate_EnterIgnoredWhileSending(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	m := newTestModel(t, sender)

	m, _ = submit(t, m, "primera")
	m, cmd := submit(t, m, "segunda")

	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.loop.Transcript().Len())
	assert.Equal(t, "segunda", m.textinput.Value())
}

func TestUpdate_EmptyInputIgnored(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	m, cmd := submit(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Zero(t, m.loop.Transcript().Len())
	assert.Equal(t, transcript.AwaitingInput, m.loop.State())
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestUpdate_LongInputIsNotTruncated(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	m := New(Config{
		Loop:      transcript.NewLoop(sender, prompt.Default()),
		Theme:     "light",
		CharLimit: config.DefaultUIConfig().CharLimit,
	})

	long := strings.Repeat("palabra ", 700) + "fin"
	m, cmd := submit(t, m, long)
	require.NotNil(t, cmd)

	turns := m.loop.Transcript().Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, long, turns[0].Content)

	resolved(t, collect(cmd))
	require.Len(t, sender.sent, 1)
	assert.Len(t, sender.sent[0], len(long))
}

func TestUpdate_CharLimitCapsInput(t *testing.T) {
	m := New(Config{
		Loop:      transcript.NewLoop(&fakeSender{}, prompt.Default()),
		Theme:     "light",
		CharLimit: 4,
	})
	m.textinput.SetValue("holaaaa")
	assert.Equal(t, "hola", m.textinput.Value())
}

func TestUpdate_CursorBlinkReachesInput(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	_, cmd := m.Update(textinput.Blink())
	assert.NotNil(t, cmd, "a focused input schedules the next blink")

	m.textinput.Blur()
	_, cmd = m.Update(textinput.Blink())
	assert.Nil(t, cmd)
}

func TestUpdate_Resize(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = updated.(Model)
	assert.Equal(t, 56, m.viewport.Width)
	assert.Equal(t, 20-headerHeight-inputHeight-footerHeight-statusHeight, m.viewport.Height)
	assert.True(t, strings.Contains(m.View(), strings.Repeat("─", 60)))
}

func TestSafeRenderMarkdown_Fallback(t *testing.T) {
	m := newTestModel(t, &fakeSender{})
	m.renderer = nil
	assert.Equal(t, "**hola**", m.safeRenderMarkdown("**hola**"))
	assert.Equal(t, "", m.safeRenderMarkdown(""))
}

func TestView_FooterShowsTokens(t *testing.T) {
	tracker := usage.NewTracker()
	tracker.Track("s", "m", 7, 5)

	m := New(Config{
		Loop:  transcript.NewLoop(&fakeSender{}, prompt.Default()),
		Theme: "light",
		Usage: tracker,
	})
	assert.Contains(t, m.renderFooter(), "tokens: 12")
}
