// Package config provides the configuration schema, loader, and hot-reload
// watcher for scribekey.
package config

// Config is the root configuration structure for scribekey. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Audio      AudioConfig      `yaml:"audio"`
	VAD        VADConfig        `yaml:"vad"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Filter     FilterConfig     `yaml:"filter"`
	Enhancer   EnhancerConfig   `yaml:"enhancer"`
	Keyboard   KeyboardConfig   `yaml:"keyboard"`
	Output     OutputConfig     `yaml:"output"`
	Handsfree  HandsfreeConfig  `yaml:"handsfree"`
}

// ServerConfig holds process-wide logging settings.
type ServerConfig struct {
	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel LogLevel `yaml:"log_level"`
}

// LogLevel is a validated logging verbosity level.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is one of the known log levels.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

// AudioConfig selects the capture device.
type AudioConfig struct {
	// DeviceID selects a specific input device by platform identifier. Empty
	// selects the system default, with fallback-warning behaviour if the
	// configured device later disappears.
	DeviceID string `yaml:"device_id"`
}

// VADConfig mirrors internal/vad.Config's tunables, exposed for the
// settings UI and hands-free mode.
type VADConfig struct {
	Aggressiveness      string `yaml:"aggressiveness"` // "quality", "low_bitrate", "aggressive", "very_aggressive"
	FrameDurationMs      int    `yaml:"frame_duration_ms"`
	SpeechStartFrames   int    `yaml:"speech_start_frames"`
	SpeechEndFrames     int    `yaml:"speech_end_frames"`
	PreSpeechPaddingMs  int    `yaml:"pre_speech_padding_ms"`
	PostSpeechPaddingMs int    `yaml:"post_speech_padding_ms"`
	AutoStopSilenceMs   int    `yaml:"auto_stop_silence_ms"`
}

// RecognizerBackend names a recognizer implementation.
type RecognizerBackend string

const (
	BackendWhisper    RecognizerBackend = "whisper"
	BackendTransducer RecognizerBackend = "transducer"
)

// IsValid reports whether b is a known backend.
func (b RecognizerBackend) IsValid() bool {
	switch b {
	case BackendWhisper, BackendTransducer:
		return true
	default:
		return false
	}
}

// RecognizerConfig configures the primary/fallback recognizer dispatch.
// Primary is tried first; Fallbacks are tried in order if it fails (see
// internal/recognizer.FallbackRecognizer).
type RecognizerConfig struct {
	Primary   RecognizerBackend   `yaml:"primary"`
	Fallbacks []RecognizerBackend `yaml:"fallbacks"`

	WhisperModelPath string `yaml:"whisper_model_path"`

	TransducerModelDir     string `yaml:"transducer_model_dir"`
	TransducerEncoderFile  string `yaml:"transducer_encoder_file"`
	TransducerDecoderFile  string `yaml:"transducer_decoder_file"`
	TransducerJoinerFile   string `yaml:"transducer_joiner_file"`
	TransducerTokensFile   string `yaml:"transducer_tokens_file"`

	NumThreads int `yaml:"num_threads"`

	// CircuitBreakerFailureThreshold is the number of consecutive primary
	// failures before the circuit opens and fallbacks are tried without
	// retrying the primary. 0 uses the package default.
	CircuitBreakerFailureThreshold int `yaml:"circuit_breaker_failure_threshold"`

	// CircuitBreakerResetSeconds is how long the circuit stays open before a
	// retry is allowed. 0 uses the package default.
	CircuitBreakerResetSeconds int `yaml:"circuit_breaker_reset_seconds"`
}

// DictionaryEntryConfig is one custom-vocabulary substitution rule.
type DictionaryEntryConfig struct {
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

// FilterConfig configures internal/filter.Filter's deterministic
// post-processing stages.
type FilterConfig struct {
	ApplyDictionary     bool                    `yaml:"apply_dictionary"`
	RemoveFillers       bool                    `yaml:"remove_fillers"`
	CleanupPunctuation  bool                    `yaml:"cleanup_punctuation"`
	NormalizeWhitespace bool                    `yaml:"normalize_whitespace"`
	SentenceCase        bool                    `yaml:"sentence_case"`
	Dictionary          []DictionaryEntryConfig `yaml:"dictionary"`
}

// EnhancerConfig configures the optional local-LLM enhancement stage.
type EnhancerConfig struct {
	Enabled           bool   `yaml:"enabled"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	DefaultTemplateID string `yaml:"default_template_id"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`

	// CustomTemplates lets users add prompt templates beyond the built-ins.
	CustomTemplates []PromptTemplateConfig `yaml:"custom_templates"`
}

// PromptTemplateConfig defines a user-supplied enhancement prompt template.
type PromptTemplateConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}

// ShortcutConfig describes one configured global shortcut, mirroring
// internal/keyboard.ShortcutSpec.
type ShortcutConfig struct {
	ID string `yaml:"id"`

	// StandaloneModifier, if set, makes this a standalone-modifier shortcut
	// (e.g. "ShiftRight"); Modifiers/MainKey are then ignored.
	StandaloneModifier string `yaml:"standalone_modifier"`

	Modifiers []string `yaml:"modifiers"`
	MainKey   string   `yaml:"main_key"`
}

// KeyboardConfig lists the shortcuts registered at startup.
type KeyboardConfig struct {
	Shortcuts []ShortcutConfig `yaml:"shortcuts"`
}

// OutputConfig configures how a completed transcript reaches the user.
type OutputConfig struct {
	AutoCopy                    bool `yaml:"auto_copy"`
	AutoPaste                   bool `yaml:"auto_paste"`
	RestoreClipboardAfterSeconds int  `yaml:"restore_clipboard_after_seconds"`
	PasteInitialDelayMs          int  `yaml:"paste_initial_delay_ms"`
}

// HandsfreeConfig configures the VAD-driven automatic mode.
type HandsfreeConfig struct {
	Enabled              bool `yaml:"enabled"`
	ListenTimeoutSeconds int  `yaml:"listen_timeout_seconds"`
}
