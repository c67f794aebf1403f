package main

import (
	"flag"
	"testing"

	"murmur/config"
)

func parseAutoPaste(t *testing.T, args []string) (*flag.FlagSet, bool) {
	t.Helper()
	fs := flag.NewFlagSet("murmur", flag.ContinueOnError)
	v := fs.Bool("autopaste", true, "")
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs, *v
}

func TestAutoPasteSettingSurvivesDefaultFlag(t *testing.T) {
	cfg := config.Default()
	cfg.AutoPaste = false

	fs, v := parseAutoPaste(t, nil)
	applyAutoPaste(&cfg, fs, v)
	if cfg.AutoPaste {
		t.Error("auto_paste=false from settings was clobbered by the flag default")
	}
}

func TestAutoPasteFlagOverridesSetting(t *testing.T) {
	cfg := config.Default()
	cfg.AutoPaste = false
	fs, v := parseAutoPaste(t, []string{"-autopaste"})
	applyAutoPaste(&cfg, fs, v)
	if !cfg.AutoPaste {
		t.Error("-autopaste did not override the setting")
	}

	cfg = config.Default()
	cfg.AutoPaste = true
	fs, v = parseAutoPaste(t, []string{"-autopaste=false"})
	applyAutoPaste(&cfg, fs, v)
	if cfg.AutoPaste {
		t.Error("-autopaste=false did not override the setting")
	}
}
