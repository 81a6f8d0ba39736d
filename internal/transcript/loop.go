package transcript

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"lumi/internal/logging"
	"lumi/internal/prompt"
	"lumi/internal/session"
)

var (
	// ErrEmptyInput rejects a submission that is blank after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy rejects a submission while a turn is still in flight.
	ErrBusy = errors.New("a turn is already in progress")
)

// State is the phase of the turn loop.
type State int

const (
	AwaitingInput State = iota
	Sending
	Rendering
)

// String returns the display name for each state
func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Sending:
		return "sending"
	case Rendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Sender relays one user message and returns the complete reply.
// *session.Session satisfies it.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// Loop drives AwaitingInput -> Sending -> Rendering -> AwaitingInput.
// Send failures never leave the loop; they become an in-band assistant turn.
type Loop struct {
	sender  Sender
	persona prompt.Persona
	history *Transcript

	mu      sync.Mutex
	state   State
	turn    int
	started time.Time
}

// NewLoop creates a loop relaying through sender. Blank persona fields fall
// back to the built-in persona.
func NewLoop(sender Sender, persona prompt.Persona) *Loop {
	return &Loop{
		sender:  sender,
		persona: prompt.NewPersona(persona.Name, persona.SystemPrompt),
		history: New(),
		state:   AwaitingInput,
	}
}

// Transcript returns the history the loop appends to.
func (l *Loop) Transcript() *Transcript {
	return l.history
}

// Persona returns the persona used for labels and in-band errors.
func (l *Loop) Persona() prompt.Persona {
	return l.persona
}

// State returns the current phase.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Submit accepts user text and records it before anything is sent.
// It returns the trimmed text to pass to Relay.
func (l *Loop) Submit(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != AwaitingInput {
		return "", ErrBusy
	}

	l.turn++
	l.started = time.Now()
	l.history.append(Turn{Role: RoleUser, Content: text, Time: l.started})
	l.state = Sending

	logging.Audit().TurnStart(l.turn, len(text))
	logging.Transcript("turn %d: user message accepted (%d chars)", l.turn, len(text))
	return text, nil
}

// Relay performs the blocking send. It does not touch the history, so it can
// run off the UI goroutine.
func (l *Loop) Relay(ctx context.Context, text string) (string, error) {
	if l.sender == nil {
		return "", &session.SendError{Cause: session.ErrNoClient}
	}
	return l.sender.Send(ctx, text)
}

// Resolve records the outcome of Relay as the assistant turn and moves the
// loop to Rendering. A failure becomes the persona's apology carrying the cause.
func (l *Loop) Resolve(reply string, err error) Turn {
	content := reply
	if err != nil {
		content = l.persona.ErrorReply(causeOf(err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	turn := Turn{Role: RoleAssistant, Content: content, Time: time.Now()}
	l.history.append(turn)
	l.state = Rendering

	logging.Audit().TurnEnd(l.turn, time.Since(l.started), err == nil)
	if err != nil {
		logging.Get(logging.CategoryTranscript).Warn("turn %d: send failed: %v", l.turn, err)
	} else {
		logging.Transcript("turn %d: reply recorded (%d chars)", l.turn, len(reply))
	}
	return turn
}

// Rendered returns the loop to AwaitingInput once the reply is on screen.
func (l *Loop) Rendered() {
	l.mu.Lock()
	if l.state == Rendering {
		l.state = AwaitingInput
	}
	l.mu.Unlock()
}

// ProcessTurn runs one full turn synchronously. The only errors are for
// rejected input; send failures come back as the assistant turn.
func (l *Loop) ProcessTurn(ctx context.Context, text string) (Turn, error) {
	accepted, err := l.Submit(text)
	if err != nil {
		return Turn{}, err
	}
	reply, sendErr := l.Relay(ctx, accepted)
	turn := l.Resolve(reply, sendErr)
	l.Rendered()
	return turn, nil
}

// causeOf unwraps a SendError to the underlying cause so the in-band message
// shows what went wrong rather than the wrapper text.
func causeOf(err error) string {
	var sendErr *session.SendError
	if errors.As(err, &sendErr) && sendErr.Cause != nil {
		return sendErr.Cause.Error()
	}
	return err.Error()
}
