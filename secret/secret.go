// Package secret stores provider API keys outside the settings file, in the
// OS keyring when one is available and otherwise via environment variables.
package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const service = "murmur"

// ErrNotFound reports that no credential exists for the requested provider.
var ErrNotFound = errors.New("secret: no credential stored")

// Store holds one API key per provider name.
type Store interface {
	Get(provider string) (string, error)
	Set(provider, key string) error
	Delete(provider string) error
}

// Keyring reads and writes the OS keyring, falling back to the
// <PROVIDER>_API_KEY environment variable when the keyring has no entry.
type Keyring struct{}

func NewKeyring() *Keyring { return &Keyring{} }

func (k *Keyring) Get(provider string) (string, error) {
	key, err := keyring.Get(service, provider)
	if err == nil && key != "" {
		return key, nil
	}
	if env := os.Getenv(envVar(provider)); env != "" {
		return env, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secret: keyring read for %s: %w", provider, err)
	}
	return "", ErrNotFound
}

func (k *Keyring) Set(provider, key string) error {
	if err := keyring.Set(service, provider, key); err != nil {
		return fmt.Errorf("secret: keyring write for %s: %w", provider, err)
	}
	return nil
}

func (k *Keyring) Delete(provider string) error {
	err := keyring.Delete(service, provider)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("secret: keyring delete for %s: %w", provider, err)
	}
	return nil
}

func envVar(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// Fake is an in-memory Store for tests.
type Fake struct {
	keys map[string]string
}

func NewFake() *Fake { return &Fake{keys: map[string]string{}} }

func (f *Fake) Get(provider string) (string, error) {
	key, ok := f.keys[provider]
	if !ok || key == "" {
		return "", ErrNotFound
	}
	return key, nil
}

func (f *Fake) Set(provider, key string) error {
	f.keys[provider] = key
	return nil
}

func (f *Fake) Delete(provider string) error {
	delete(f.keys, provider)
	return nil
}
