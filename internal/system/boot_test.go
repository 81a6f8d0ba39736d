package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lumi/internal/config"
	"lumi/internal/prompt"
	"lumi/internal/provider"
	"lumi/internal/secrets"
	"lumi/internal/testing/fakegemini"
	"lumi/internal/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(srv *fakegemini.Server) *config.Config {
	cfg := config.DefaultConfig()
	cfg.LLM.BaseURL = srv.BaseURL()
	return cfg
}

func TestBoot_MissingKeyIsFatal(t *testing.T) {
	rt, err := Boot(context.Background(), BootConfig{
		Config:    config.DefaultConfig(),
		Workspace: t.TempDir(),
		Env:       secrets.Static{},
	})
	assert.Nil(t, rt)
	require.Error(t, err)

	var credErr *provider.CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.ErrorIs(t, err, provider.ErrMissingCredential)
}

func TestBoot_MalformedSecretsFileIsFatal(t *testing.T) {
	ws := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Secrets.File = "secrets.yaml"
	require.NoError(t, os.WriteFile(filepath.Join(ws, "secrets.yaml"), []byte("API_KEY: [unclosed"), 0600))

	rt, err := Boot(context.Background(), BootConfig{Config: cfg, Workspace: ws, Env: secrets.Static{}})
	assert.Nil(t, rt)

	var credErr *provider.CredentialError
	require.True(t, errors.As(err, &credErr))
}

func TestBoot_RunsATurn(t *testing.T) {
	srv := fakegemini.New(t, "¡Hola! Soy Lumi.")

	rt, err := Boot(context.Background(), BootConfig{
		Config:    testConfig(srv),
		APIKey:    "from-flag",
		Workspace: t.TempDir(),
		Env:       secrets.Static{secrets.APIKey: "from-env"},
	})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, prompt.DefaultSystemPrompt, rt.Session.SystemPrompt())
	assert.Equal(t, "Lumi", rt.Persona.Name)

	turn, err := rt.Loop.ProcessTurn(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, transcript.RoleAssistant, turn.Role)
	assert.Equal(t, "¡Hola! Soy Lumi.", turn.Content)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "from-flag", reqs[0].APIKey)
	assert.Equal(t, config.DefaultModel, reqs[0].Model)
	assert.Equal(t, 1, rt.Usage.Stats().Calls)
}

func TestBoot_CredentialPrecedence(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "secrets.yaml"), []byte("API_KEY: from-file\n"), 0600))

	tests := []struct {
		name string
		flag string
		env  secrets.Static
		conf string
		want string
	}{
		{name: "flag wins", flag: "from-flag", env: secrets.Static{secrets.APIKey: "from-env"}, conf: "from-config", want: "from-flag"},
		{name: "env before file", env: secrets.Static{secrets.APIKey: "from-env"}, conf: "from-config", want: "from-env"},
		{name: "file before config", env: secrets.Static{}, conf: "from-config", want: "from-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakegemini.New(t, "ok")
			cfg := testConfig(srv)
			cfg.Secrets.File = "secrets.yaml"
			cfg.LLM.APIKey = tt.conf

			rt, err := Boot(context.Background(), BootConfig{Config: cfg, APIKey: tt.flag, Workspace: ws, Env: tt.env})
			require.NoError(t, err)
			defer rt.Close()

			_, err = rt.Loop.ProcessTurn(context.Background(), "hola")
			require.NoError(t, err)
			require.Len(t, srv.Requests(), 1)
			assert.Equal(t, tt.want, srv.Requests()[0].APIKey)
		})
	}
}

func TestBoot_ConfigOnlyKey(t *testing.T) {
	srv := fakegemini.New(t, "ok")
	cfg := testConfig(srv)
	cfg.LLM.APIKey = "from-config"
	cfg.Persona.Name = "Nova"

	rt, err := Boot(context.Background(), BootConfig{Config: cfg, Workspace: t.TempDir(), Env: secrets.Static{}})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "Nova", rt.Loop.Persona().Name)
}

func TestRuntime_CloseNil(t *testing.T) {
	var rt *Runtime
	assert.NoError(t, rt.Close())
}
