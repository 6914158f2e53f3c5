package config_test

import (
	"strings"
	"testing"

	"github.com/scribekey/scribekey/internal/config"
)

func TestLoadFromReaderEmptyIsValid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("expected empty config to be valid, got %v", err)
	}
	if cfg.Server.LogLevel != "" {
		t.Errorf("expected zero-value LogLevel, got %q", cfg.Server.LogLevel)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: verbose
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log_level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidateWhisperRequiresModelPath(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  primary: whisper
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "whisper_model_path") {
		t.Errorf("error should mention whisper_model_path, got: %v", err)
	}
}

func TestValidateTransducerRequiresModelDir(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  primary: transducer
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "transducer_model_dir") {
		t.Errorf("error should mention transducer_model_dir, got: %v", err)
	}
}

func TestValidateRejectsUnknownBackendName(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  primary: cloud-magic
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown recognizer backend, got nil")
	}
}

func TestValidateDuplicateShortcutIDs(t *testing.T) {
	t.Parallel()
	yaml := `
keyboard:
  shortcuts:
    - id: toggle_recording
      standalone_modifier: ShiftRight
    - id: toggle_recording
      main_key: Space
      modifiers: ["CommandOrControl"]
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for duplicate shortcut ids, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidateShortcutRequiresKeyOrModifier(t *testing.T) {
	t.Parallel()
	yaml := `
keyboard:
  shortcuts:
    - id: broken
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for shortcut with neither main_key nor standalone_modifier, got nil")
	}
}

func TestValidateEnhancerRequiresModelWhenEnabled(t *testing.T) {
	t.Parallel()
	yaml := `
enhancer:
  enabled: true
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "enhancer.model") {
		t.Errorf("error should mention enhancer.model, got: %v", err)
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: info
recognizer:
  primary: whisper
  whisper_model_path: /models/ggml-base.en.bin
filter:
  remove_fillers: true
  dictionary:
    - from: scribe key
      to: ScribeKey
keyboard:
  shortcuts:
    - id: toggle_recording
      standalone_modifier: ShiftRight
enhancer:
  enabled: true
  model: llama3.2
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recognizer.WhisperModelPath != "/models/ggml-base.en.bin" {
		t.Errorf("whisper_model_path = %q", cfg.Recognizer.WhisperModelPath)
	}
	if len(cfg.Filter.Dictionary) != 1 || cfg.Filter.Dictionary[0].To != "ScribeKey" {
		t.Errorf("dictionary = %+v", cfg.Filter.Dictionary)
	}
}
