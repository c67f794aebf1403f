// Package config persists user settings as TOML under the OS config dir.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"murmur/gesture"
	"murmur/transcriber"
)

type Shortcut struct {
	Modifiers []string `toml:"modifiers"`
	Key       string   `toml:"key"`
}

type Config struct {
	Shortcut         Shortcut `toml:"shortcut"`
	Provider         string   `toml:"provider"`
	Language         string   `toml:"language"`
	Format           string   `toml:"format"`
	InputDevice      string   `toml:"input_device"`
	AutoPaste        bool     `toml:"auto_paste"`
	MinClipMs        int      `toml:"min_clip_ms"`
	CooldownMs       int      `toml:"cooldown_ms"`
	ShortUtteranceMs int      `toml:"short_utterance_ms"`
	DenyList         []string `toml:"deny_list"`
}

func Default() Config {
	return Config{
		Shortcut:         Shortcut{Modifiers: []string{"ctrl", "shift"}, Key: "space"},
		Provider:         "openai",
		Language:         "en",
		Format:           "wav",
		AutoPaste:        true,
		MinClipMs:        300,
		CooldownMs:       300,
		ShortUtteranceMs: 2500,
		DenyList:         transcriber.DefaultDenyList,
	}
}

// Path is the default settings location, created on demand by Save.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "murmur", "settings.toml"), nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error; unknown keys are ignored so older builds can read newer files.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes atomically: full marshal to a temp file, then rename.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "settings-*.toml")
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Combo resolves the configured shortcut.
func (c Config) Combo() (gesture.Combo, error) {
	return gesture.ParseCombo(c.Shortcut.Modifiers, c.Shortcut.Key)
}

func (c Config) MinClip() time.Duration {
	return time.Duration(c.MinClipMs) * time.Millisecond
}

func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// Filter builds the hallucination policy from the configured deny list.
func (c Config) Filter() transcriber.FilterPolicy {
	return transcriber.FilterPolicy{
		DenyList:       c.DenyList,
		ShortUtterance: time.Duration(c.ShortUtteranceMs) * time.Millisecond,
	}
}
