// Package fakegemini is an in-process stand-in for the Gemini
// generateContent endpoint, used by tests that exercise the real SDK.
package fakegemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Part is a text part of a content entry.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one role-tagged entry as sent on the wire.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Text joins the text parts.
func (c Content) Text() string {
	var sb strings.Builder
	for _, p := range c.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Request is a decoded generateContent call.
type Request struct {
	Model             string
	APIKey            string
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// Responder produces the reply for a request. A non-empty errMsg makes the
// server answer with an API error of the given status.
type Responder func(req Request) (reply string, status int, errMsg string)

// Server records requests and answers them with a Responder. Reported token
// usage is one prompt token per content entry and one candidate token per word.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	responder Responder
}

// New starts a server answering with replies in order, repeating the last.
func New(t testing.TB, replies ...string) *Server {
	i := 0
	var mu sync.Mutex
	return NewWithResponder(t, func(Request) (string, int, string) {
		mu.Lock()
		defer mu.Unlock()
		if len(replies) == 0 {
			return "", http.StatusOK, ""
		}
		r := replies[i]
		if i < len(replies)-1 {
			i++
		}
		return r, http.StatusOK, ""
	})
}

// Failing starts a server that rejects every call.
func Failing(t testing.TB, status int, message string) *Server {
	return NewWithResponder(t, func(Request) (string, int, string) {
		return "", status, message
	})
}

// NewWithResponder starts a server with a custom responder. It is closed
// when the test ends.
func NewWithResponder(t testing.TB, responder Responder) *Server {
	s := &Server{responder: responder}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value for the SDK's HTTPOptions.BaseURL.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":generateContent") {
		writeError(w, http.StatusNotFound, "unknown method "+r.URL.Path)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	path := strings.TrimSuffix(r.URL.Path, ":generateContent")
	if idx := strings.LastIndex(path, "/models/"); idx >= 0 {
		req.Model = path[idx+len("/models/"):]
	}
	req.APIKey = r.Header.Get("x-goog-api-key")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	responder := s.responder
	s.mu.Unlock()

	reply, status, errMsg := responder(req)
	if errMsg != "" {
		writeError(w, status, errMsg)
		return
	}

	resp := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": reply}},
			},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     len(req.Contents),
			"candidatesTokenCount": len(strings.Fields(reply)),
			"totalTokenCount":      len(req.Contents) + len(strings.Fields(reply)),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"status":  http.StatusText(status),
		},
	})
}
