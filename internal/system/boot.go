// Package system wires the conversation stack together in a fixed order:
// secrets, provider client, session, transcript loop.
package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"lumi/internal/config"
	"lumi/internal/logging"
	"lumi/internal/prompt"
	"lumi/internal/provider"
	"lumi/internal/secrets"
	"lumi/internal/session"
	"lumi/internal/transcript"
	"lumi/internal/usage"
)

// BootConfig selects what Boot wires.
type BootConfig struct {
	// Config is the loaded configuration. Nil means config.DefaultConfig().
	Config *config.Config

	// APIKey is an explicit credential (e.g. --api-key). It wins over every store.
	APIKey string

	// Workspace anchors relative paths such as the secrets file. Empty means cwd.
	Workspace string

	// Env is the environment secret store. Nil means secrets.DefaultEnvStore().
	Env secrets.Store
}

// Runtime is a fully initialized conversation stack.
type Runtime struct {
	Config  *config.Config
	Persona prompt.Persona
	Client  *provider.Client
	Session *session.Session
	Loop    *transcript.Loop
	Usage   *usage.Tracker
}

// Boot initializes the stack. Any error is fatal and comes back with a nil
// Runtime: *provider.CredentialError or *session.SessionError.
func Boot(ctx context.Context, bc BootConfig) (*Runtime, error) {
	start := time.Now()

	cfg := bc.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	workspace := bc.Workspace
	if workspace == "" {
		workspace, _ = os.Getwd()
	}

	// 1. Credential
	apiKey, err := resolveAPIKey(bc, cfg, workspace)
	if err != nil {
		return nil, &provider.CredentialError{Cause: err}
	}

	// 2. Provider client
	client, err := provider.NewInitializer(provider.Config{
		APIKey:     apiKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		APIVersion: cfg.LLM.APIVersion,
	}).Client(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Session
	persona := prompt.NewPersona(cfg.Persona.Name, cfg.Persona.SystemPrompt)
	tracker := usage.NewTracker()
	sess, err := session.NewManager(client, session.Options{
		Model:   cfg.LLM.Model,
		Persona: persona,
		Usage:   tracker,
	}).Session(ctx)
	if err != nil {
		return nil, err
	}

	// 4. Transcript loop
	loop := transcript.NewLoop(sess, persona)

	logging.Boot("boot complete in %s (session=%s)", time.Since(start), sess.ID)
	return &Runtime{
		Config:  cfg,
		Persona: persona,
		Client:  client,
		Session: sess,
		Loop:    loop,
		Usage:   tracker,
	}, nil
}

// resolveAPIKey walks flag, environment, secrets file, then config. A missing
// key is not an error here; the provider reports it.
func resolveAPIKey(bc BootConfig, cfg *config.Config, workspace string) (string, error) {
	env := bc.Env
	if env == nil {
		env = secrets.DefaultEnvStore()
	}

	secretsFile := cfg.Secrets.File
	if secretsFile != "" && !filepath.IsAbs(secretsFile) {
		secretsFile = filepath.Join(workspace, secretsFile)
	}

	store := secrets.Chain{
		secrets.Static{secrets.APIKey: bc.APIKey},
		env,
		secrets.FileStore{Path: secretsFile},
		secrets.Static{secrets.APIKey: cfg.LLM.APIKey},
	}

	key, err := secrets.Resolve(store, secrets.APIKey)
	if errors.Is(err, secrets.ErrSecretNotFound) {
		logging.Boot("no API key found in flag, environment, %s or config", secretsFile)
		return "", nil
	}
	return key, err
}

// Close ends the session.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.Session != nil {
		r.Session.Close()
	}
	return nil
}
