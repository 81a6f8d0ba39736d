// Package session manages the single conversation held with the remote model.
// The session is bound to one provider client and one system instruction for
// its whole lifetime; the provider SDK keeps the accumulated context.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lumi/internal/logging"
	"lumi/internal/prompt"
	"lumi/internal/provider"
	"lumi/internal/usage"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

var (
	// ErrNoClient is the cause of a SessionError when the client failed to initialize.
	ErrNoClient = errors.New("no provider client")

	// ErrEmptyReply is the cause of a SendError when the model returned no text.
	ErrEmptyReply = errors.New("empty reply from model")
)

// SessionError reports that the conversation session could not be created.
type SessionError struct {
	Cause error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session initialization failed: %v", e.Cause)
}

func (e *SessionError) Unwrap() error { return e.Cause }

// SendError reports a failed turn. It is recoverable: the transcript shows it
// in-band and the conversation continues.
type SendError struct {
	Cause error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed: %v", e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }

// Options configures session creation.
type Options struct {
	// Model overrides the client's default model.
	Model string
	// Persona supplies the system instruction.
	Persona prompt.Persona
	// Usage receives token counts reported by the provider. Optional.
	Usage *usage.Tracker
}

// chat is the subset of *genai.Chat used by Session.
type chat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Session is a stateful conversation with the remote model.
type Session struct {
	ID    string
	Model string

	persona prompt.Persona
	chat    chat
	usage   *usage.Tracker
	started time.Time

	mu    sync.Mutex
	turns int
}

// SystemPrompt returns the instruction bound at creation.
func (s *Session) SystemPrompt() string {
	return s.persona.SystemPrompt
}

// Persona returns the persona the session was created with.
func (s *Session) Persona() prompt.Persona {
	return s.persona
}

// Turns returns the number of successful exchanges.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// Send relays text to the model and blocks until the full reply arrives.
// There is exactly one attempt; failures come back as *SendError.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	logging.APIDebug("session %s: sending %d chars", s.ID, len(text))

	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		logging.AuditWithSession(s.ID).LLMCall(s.Model, time.Since(start), err)
		logging.Get(logging.CategoryAPI).Warn("session %s: send failed: %v", s.ID, err)
		return "", &SendError{Cause: err}
	}

	if md := resp.UsageMetadata; md != nil {
		s.usage.Track(s.ID, s.Model, int(md.PromptTokenCount), int(md.CandidatesTokenCount))
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		logging.AuditWithSession(s.ID).LLMCall(s.Model, time.Since(start), ErrEmptyReply)
		return "", &SendError{Cause: ErrEmptyReply}
	}

	s.turns++
	logging.AuditWithSession(s.ID).LLMCall(s.Model, time.Since(start), nil)
	logging.API("session %s: reply %d chars in %s", s.ID, len(reply), time.Since(start))
	return reply, nil
}

// Close logs the end of the session.
func (s *Session) Close() {
	logging.AuditWithSession(s.ID).SessionEnd(s.Turns(), time.Since(s.started))
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager creates the process-wide session at most once.
type Manager struct {
	client *provider.Client
	opts   Options

	once    sync.Once
	session *Session
	err     error
}

// NewManager binds a manager to a client. A nil client is the failure
// sentinel from provider.Initializer and makes Session fail fast.
func NewManager(client *provider.Client, opts Options) *Manager {
	return &Manager{client: client, opts: opts}
}

// Session returns the memoized session, creating it on first use.
func (m *Manager) Session(ctx context.Context) (*Session, error) {
	m.once.Do(func() {
		m.session, m.err = m.start(ctx)
		if m.err != nil {
			logging.BootError("%v", m.err)
		}
	})
	return m.session, m.err
}

func (m *Manager) start(ctx context.Context) (*Session, error) {
	if m.client == nil {
		return nil, &SessionError{Cause: ErrNoClient}
	}

	model := strings.TrimSpace(m.opts.Model)
	if model == "" {
		model = m.client.Model()
	}
	persona := m.opts.Persona
	if persona.SystemPrompt == "" || persona.Name == "" {
		persona = prompt.NewPersona(persona.Name, persona.SystemPrompt)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(persona.SystemPrompt, genai.RoleUser),
	}

	c, err := m.client.Chats().Create(ctx, model, cfg, nil)
	if err != nil {
		return nil, &SessionError{Cause: err}
	}

	s := &Session{
		ID:      uuid.NewString(),
		Model:   model,
		persona: persona,
		chat:    c,
		usage:   m.opts.Usage,
		started: time.Now(),
	}
	logging.AuditWithSession(s.ID).SessionStart(model)
	logging.Session("session %s created (model=%s, client=%s)", s.ID, model, m.client.ID())
	return s, nil
}
