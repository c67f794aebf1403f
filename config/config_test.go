package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"murmur/gesture"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" || cfg.Format != "wav" || !cfg.AutoPaste {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MinClipMs != 300 || cfg.CooldownMs != 300 || cfg.ShortUtteranceMs != 2500 {
		t.Errorf("unexpected timing defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	want := Default()
	want.Provider = "groq"
	want.Format = "flac"
	want.InputDevice = "USB Mic"
	want.Shortcut = Shortcut{Modifiers: []string{"super", "shift"}, Key: "space"}
	want.DenyList = []string{"bye"}

	if err := want.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Provider != "groq" || got.Format != "flac" || got.InputDevice != "USB Mic" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.DenyList) != 1 || got.DenyList[0] != "bye" {
		t.Errorf("deny list = %v", got.DenyList)
	}
	if got.Shortcut.Key != "space" || len(got.Shortcut.Modifiers) != 2 {
		t.Errorf("shortcut = %+v", got.Shortcut)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	partial := "provider = \"groq\"\nfuture_knob = 42\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "groq" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Language != "en" || cfg.MinClipMs != 300 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("provider = [not toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCombo(t *testing.T) {
	cfg := Default()
	combo, err := cfg.Combo()
	if err != nil {
		t.Fatal(err)
	}
	want := gesture.Combo{Mods: gesture.ModCtrl | gesture.ModShift, Key: gesture.KeySpace}
	if combo != want {
		t.Errorf("Combo = %+v, want %+v", combo, want)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if cfg.MinClip() != 300*time.Millisecond {
		t.Errorf("MinClip = %v", cfg.MinClip())
	}
	if cfg.Cooldown() != 300*time.Millisecond {
		t.Errorf("Cooldown = %v", cfg.Cooldown())
	}
	if f := cfg.Filter(); f.ShortUtterance != 2500*time.Millisecond {
		t.Errorf("ShortUtterance = %v", f.ShortUtterance)
	}
}
