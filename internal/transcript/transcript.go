// Package transcript holds the linear chat history and the per-turn loop that
// relays user text to the model and records the reply.
package transcript

import (
	"sync"
	"time"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one immutable entry of the history.
type Turn struct {
	Role    Role
	Content string
	Time    time.Time
}

// Transcript is an append-only, ordered list of turns. There is no way to
// edit or remove an entry once appended.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

func (t *Transcript) append(turn Turn) {
	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()
}

// Turns returns a copy of the history in insertion order.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the most recent entry.
func (t *Transcript) Last() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}
