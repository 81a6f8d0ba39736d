// Package usage counts the tokens spent on the conversation. Counts live in
// memory for the lifetime of the process.
package usage

import (
	"sync"
)

// Tracker aggregates token usage reported by the provider.
type Tracker struct {
	mu    sync.Mutex
	stats Stats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		stats: Stats{
			ByModel:   make(map[string]TokenCounts),
			BySession: make(map[string]TokenCounts),
		},
	}
}

// Track records one model call. A nil tracker ignores the call.
func (t *Tracker) Track(sessionID, model string, input, output int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Calls++
	t.stats.Total.Add(input, output)
	addToMap(t.stats.ByModel, model, input, output)
	addToMap(t.stats.BySession, sessionID, input, output)
}

// Total returns the running totals.
func (t *Tracker) Total() TokenCounts {
	if t == nil {
		return TokenCounts{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Total
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.stats
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
