package config_test

import (
	"testing"

	"github.com/scribekey/scribekey/internal/config"
)

func TestDiffNoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo},
		Keyboard: config.KeyboardConfig{
			Shortcuts: []config.ShortcutConfig{{ID: "toggle_recording", StandaloneModifier: "ShiftRight"}},
		},
	}
	d := config.Diff(cfg, cfg)
	if d.LogLevelChanged || d.ShortcutsChanged || d.DictionaryChanged || d.EnhancerChanged {
		t.Errorf("expected no changes for identical configs, got %+v", d)
	}
}

func TestDiffLogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	next := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, next)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
}

func TestDiffShortcutsChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Keyboard: config.KeyboardConfig{
		Shortcuts: []config.ShortcutConfig{{ID: "toggle_recording", StandaloneModifier: "ShiftRight"}},
	}}
	next := &config.Config{Keyboard: config.KeyboardConfig{
		Shortcuts: []config.ShortcutConfig{{ID: "toggle_recording", MainKey: "Space", Modifiers: []string{"CommandOrControl"}}},
	}}

	d := config.Diff(old, next)
	if !d.ShortcutsChanged {
		t.Error("expected ShortcutsChanged=true")
	}
}

func TestDiffDictionaryChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Filter: config.FilterConfig{
		Dictionary: []config.DictionaryEntryConfig{{From: "scribe key", To: "ScribeKey"}},
	}}
	next := &config.Config{Filter: config.FilterConfig{
		Dictionary: []config.DictionaryEntryConfig{{From: "scribe key", To: "Scribe Key"}},
	}}

	d := config.Diff(old, next)
	if !d.DictionaryChanged {
		t.Error("expected DictionaryChanged=true")
	}
}

func TestDiffEnhancerChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Enhancer: config.EnhancerConfig{Model: "llama3.2"}}
	next := &config.Config{Enhancer: config.EnhancerConfig{Model: "mistral"}}

	d := config.Diff(old, next)
	if !d.EnhancerChanged {
		t.Error("expected EnhancerChanged=true")
	}
}
