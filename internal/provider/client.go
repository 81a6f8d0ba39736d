// Package provider owns the authenticated handle to the Gemini API.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"lumi/internal/logging"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ErrMissingCredential is the cause of a CredentialError when no API key was supplied.
var ErrMissingCredential = errors.New("API key is empty")

// CredentialError reports that the provider client could not be constructed.
// It is fatal: no session or UI is started after it.
type CredentialError struct {
	Cause error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("client initialization failed: %v", e.Cause)
}

func (e *CredentialError) Unwrap() error { return e.Cause }

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // empty = SDK default
	APIVersion string // empty = SDK default (v1beta)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey: apiKey,
		Model:  "gemini-2.5-flash",
	}
}

// Client is an authenticated handle to the Gemini API. It is created once per
// process by an Initializer and shared by every session.
type Client struct {
	id    string
	model string
	genai *genai.Client
}

// ID identifies the handle in logs.
func (c *Client) ID() string { return c.id }

// Model returns the default model for sessions created from this client.
func (c *Client) Model() string { return c.model }

// Chats returns the SDK chat service.
func (c *Client) Chats() *genai.Chats { return c.genai.Chats }

// Initializer constructs the Client at most once.
type Initializer struct {
	cfg Config

	once   sync.Once
	client *Client
	err    error
}

// NewInitializer creates an initializer for cfg. Nothing is constructed until
// Client is called.
func NewInitializer(cfg Config) *Initializer {
	return &Initializer{cfg: cfg}
}

// Client returns the memoized handle. The first call builds it; every later
// call, concurrent or not, returns the same pointer and the same error.
// A nil Client always comes with a *CredentialError.
func (i *Initializer) Client(ctx context.Context) (*Client, error) {
	i.once.Do(func() {
		i.client, i.err = newClient(ctx, i.cfg)
		logging.Audit().ClientInit(clientID(i.client), i.err)
		if i.err != nil {
			logging.BootError("%v", i.err)
		}
	})
	return i.client, i.err
}

func clientID(c *Client) string {
	if c == nil {
		return ""
	}
	return c.id
}

// newClient builds the SDK client. No network traffic happens here; the key
// is only checked by the provider on the first request.
func newClient(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &CredentialError{Cause: ErrMissingCredential}
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultConfig("").Model
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, &CredentialError{Cause: err}
	}

	c := &Client{
		id:    uuid.NewString(),
		model: model,
		genai: gc,
	}
	logging.Boot("Gemini client %s ready (model=%s)", c.id, model)
	return c, nil
}
