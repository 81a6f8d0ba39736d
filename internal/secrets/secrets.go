// Package secrets resolves credentials from external secret stores.
// Lumi only reads secrets; nothing here ever writes or caches them on disk.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIKey is the secret name holding the model provider credential.
const APIKey = "API_KEY"

// ErrSecretNotFound is returned by Resolve when no store holds the secret.
var ErrSecretNotFound = errors.New("secret not found")

// Store is a read-only source of named secrets.
type Store interface {
	// Lookup returns the value and whether it was present.
	Lookup(name string) (string, bool, error)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// EnvStore reads secrets from environment variables.
type EnvStore struct {
	// Aliases maps a secret name to the variables consulted, in order.
	// Names without aliases are read verbatim.
	Aliases map[string][]string
}

// DefaultEnvStore returns the environment store used by the CLI.
func DefaultEnvStore() EnvStore {
	return EnvStore{
		Aliases: map[string][]string{
			APIKey: {"LUMI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		},
	}
}

// Lookup implements Store.
func (s EnvStore) Lookup(name string) (string, bool, error) {
	vars, ok := s.Aliases[name]
	if !ok {
		vars = []string{name}
	}
	for _, v := range vars {
		if val := strings.TrimSpace(os.Getenv(v)); val != "" {
			return val, true, nil
		}
	}
	return "", false, nil
}

// =============================================================================
// FILE
// =============================================================================

// FileStore reads secrets from a flat YAML map, e.g.
//
//	API_KEY: "AIza..."
//
// A missing file is treated as empty.
type FileStore struct {
	Path string
}

// Lookup implements Store.
func (s FileStore) Lookup(name string) (string, bool, error) {
	if s.Path == "" {
		return "", false, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read secrets file: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return "", false, fmt.Errorf("failed to parse secrets file %s: %w", s.Path, err)
	}

	val, ok := values[name]
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return "", false, nil
	}
	return val, true, nil
}

// =============================================================================
// STATIC / CHAIN
// =============================================================================

// Static is a fixed set of secrets, used for explicit flags and tests.
type Static map[string]string

// Lookup implements Store.
func (s Static) Lookup(name string) (string, bool, error) {
	val := strings.TrimSpace(s[name])
	return val, val != "", nil
}

// Chain consults stores in order and returns the first hit.
type Chain []Store

// Lookup implements Store.
func (c Chain) Lookup(name string) (string, bool, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		val, ok, err := s.Lookup(name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return val, true, nil
		}
	}
	return "", false, nil
}

// Resolve returns the named secret or ErrSecretNotFound.
func Resolve(s Store, name string) (string, error) {
	val, ok, err := s.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrSecretNotFound)
	}
	return val, nil
}
