package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Recognizer.Primary != "" && !cfg.Recognizer.Primary.IsValid() {
		errs = append(errs, fmt.Errorf("recognizer.primary %q is invalid; valid values: whisper, transducer", cfg.Recognizer.Primary))
	}
	for i, fb := range cfg.Recognizer.Fallbacks {
		if !fb.IsValid() {
			errs = append(errs, fmt.Errorf("recognizer.fallbacks[%d] %q is invalid; valid values: whisper, transducer", i, fb))
		}
	}
	if cfg.Recognizer.Primary == BackendWhisper && cfg.Recognizer.WhisperModelPath == "" {
		errs = append(errs, errors.New("recognizer.whisper_model_path is required when recognizer.primary is whisper"))
	}
	if cfg.Recognizer.Primary == BackendTransducer && cfg.Recognizer.TransducerModelDir == "" {
		errs = append(errs, errors.New("recognizer.transducer_model_dir is required when recognizer.primary is transducer"))
	}

	for i, entry := range cfg.Filter.Dictionary {
		if entry.From == "" {
			errs = append(errs, fmt.Errorf("filter.dictionary[%d].from is required", i))
		}
	}

	if cfg.Enhancer.Enabled && cfg.Enhancer.Model == "" {
		errs = append(errs, errors.New("enhancer.model is required when enhancer.enabled is true"))
	}
	for i, tmpl := range cfg.Enhancer.CustomTemplates {
		if tmpl.ID == "" {
			errs = append(errs, fmt.Errorf("enhancer.custom_templates[%d].id is required", i))
		}
	}

	seenShortcuts := make(map[string]int, len(cfg.Keyboard.Shortcuts))
	for i, sc := range cfg.Keyboard.Shortcuts {
		prefix := fmt.Sprintf("keyboard.shortcuts[%d]", i)
		if sc.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else {
			if prev, ok := seenShortcuts[sc.ID]; ok {
				errs = append(errs, fmt.Errorf("%s.id %q is a duplicate of keyboard.shortcuts[%d]", prefix, sc.ID, prev))
			}
			seenShortcuts[sc.ID] = i
		}
		if sc.StandaloneModifier == "" && sc.MainKey == "" {
			errs = append(errs, fmt.Errorf("%s must set either standalone_modifier or main_key", prefix))
		}
	}

	if cfg.Output.RestoreClipboardAfterSeconds < 0 {
		errs = append(errs, errors.New("output.restore_clipboard_after_seconds must not be negative"))
	}
	if cfg.Output.PasteInitialDelayMs < 0 {
		errs = append(errs, errors.New("output.paste_initial_delay_ms must not be negative"))
	}

	if cfg.Handsfree.ListenTimeoutSeconds < 0 {
		errs = append(errs, errors.New("handsfree.listen_timeout_seconds must not be negative"))
	}

	return errors.Join(errs...)
}
