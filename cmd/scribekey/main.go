// Command scribekey is the main entry point for the scribekey desktop
// dictation utility.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/scribekey/scribekey/internal/audio"
	"github.com/scribekey/scribekey/internal/config"
	"github.com/scribekey/scribekey/internal/enhancer"
	"github.com/scribekey/scribekey/internal/filter"
	"github.com/scribekey/scribekey/internal/indicator"
	"github.com/scribekey/scribekey/internal/keyboard"
	"github.com/scribekey/scribekey/internal/pipeline"
	"github.com/scribekey/scribekey/internal/recognizer"
	"github.com/scribekey/scribekey/internal/recognizer/transducer"
	"github.com/scribekey/scribekey/internal/recognizer/whisper"
	"github.com/scribekey/scribekey/internal/resilience"
	"github.com/scribekey/scribekey/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "scribekey: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "scribekey: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("scribekey starting",
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
		"recognizer_primary", cfg.Recognizer.Primary,
	)

	rec, err := buildRecognizer(cfg.Recognizer)
	if err != nil {
		slog.Error("failed to build recognizer", "err", err)
		return 1
	}
	defer rec.Close()

	f := filter.New(buildFilterOptions(cfg.Filter), buildDictionary(cfg.Filter))

	var enh *enhancer.Enhancer
	if cfg.Enhancer.Enabled {
		var opts []enhancer.Option
		if cfg.Enhancer.BaseURL != "" {
			opts = append(opts, enhancer.WithBaseURL(cfg.Enhancer.BaseURL))
		}
		if cfg.Enhancer.TimeoutSeconds > 0 {
			opts = append(opts, enhancer.WithTimeout(time.Duration(cfg.Enhancer.TimeoutSeconds)*time.Second))
		}
		enh = enhancer.New(opts...)
	}

	capture, err := audio.NewAudioCapture()
	if err != nil {
		slog.Error("failed to initialise audio capture", "err", err)
		return 1
	}
	defer capture.Close()

	var restoreAfter time.Duration
	if cfg.Output.RestoreClipboardAfterSeconds > 0 {
		restoreAfter = time.Duration(cfg.Output.RestoreClipboardAfterSeconds) * time.Second
	}
	clipboardBridge := indicator.NewClipboardBridge(restoreAfter)

	tray := indicator.NewSystemTray(func() { os.Exit(0) })
	emitter := &indicator.Emitter{
		Tray:     tray,
		SoundCue: indicator.NoOpSoundCue{},
		OnProgress: func(state types.PipelineState, message, deviceName string) {
			slog.Debug("pipeline progress", "state", state.String(), "message", message, "device", deviceName)
		},
	}

	p := pipeline.New(capture, rec, f, enh, clipboardBridge, emitter, nil)

	specs := buildShortcutSpecs(cfg.Keyboard)
	hotkeySource, err := keyboard.NewHotkeySource(specs)
	if err != nil {
		slog.Warn("failed to register some hotkeys", "err", err)
	}
	kb := keyboard.New(hotkeySource, buildKeyboardEvents(p, cfg))
	for _, spec := range specs {
		kb.RegisterShortcut(spec)
	}
	kb.Start()
	defer kb.Stop()

	recordingsDir := filepath.Join(os.TempDir(), "scribekey")
	if err := os.MkdirAll(recordingsDir, 0o755); err != nil {
		slog.Error("failed to create recordings directory", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("scribekey ready — press Ctrl+C to shut down")

	go tray.Run(nil, "scribekey")

	<-ctx.Done()
	slog.Info("shutdown signal received, stopping…")
	tray.Quit()
	slog.Info("goodbye")
	return 0
}

func buildRecognizer(cfg config.RecognizerConfig) (recognizer.Recognizer, error) {
	backends := make(map[config.RecognizerBackend]recognizer.Recognizer)

	build := func(backend config.RecognizerBackend) (recognizer.Recognizer, error) {
		if existing, ok := backends[backend]; ok {
			return existing, nil
		}
		var r recognizer.Recognizer
		var err error
		switch backend {
		case config.BackendWhisper:
			r, err = whisper.New(cfg.WhisperModelPath)
		case config.BackendTransducer:
			r, err = transducer.New(cfg.TransducerModelDir, transducer.ModelDir{
				Encoder: cfg.TransducerEncoderFile,
				Decoder: cfg.TransducerDecoderFile,
				Joiner:  cfg.TransducerJoinerFile,
				Tokens:  cfg.TransducerTokensFile,
			}, cfg.NumThreads)
		default:
			return nil, fmt.Errorf("recognizer: unknown backend %q", backend)
		}
		if err != nil {
			return nil, err
		}
		backends[backend] = r
		return r, nil
	}

	primaryBackend := cfg.Primary
	if primaryBackend == "" {
		primaryBackend = config.BackendWhisper
	}
	primary, err := build(primaryBackend)
	if err != nil {
		return nil, fmt.Errorf("recognizer: build primary %q: %w", primaryBackend, err)
	}

	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures: cfg.CircuitBreakerFailureThreshold,
		},
	}
	if cfg.CircuitBreakerResetSeconds > 0 {
		fbCfg.CircuitBreaker.ResetTimeout = time.Duration(cfg.CircuitBreakerResetSeconds) * time.Second
	}

	fb := recognizer.NewFallbackRecognizer(primary, fbCfg)
	for _, backend := range cfg.Fallbacks {
		r, err := build(backend)
		if err != nil {
			slog.Warn("recognizer: failed to build fallback backend, skipping", "backend", backend, "err", err)
			continue
		}
		fb.AddFallback(r)
	}
	return fb, nil
}

func buildFilterOptions(cfg config.FilterConfig) filter.Options {
	return filter.Options{
		ApplyDictionary:     cfg.ApplyDictionary,
		RemoveFillers:       cfg.RemoveFillers,
		CleanupPunctuation:  cfg.CleanupPunctuation,
		NormalizeWhitespace: cfg.NormalizeWhitespace,
		SentenceCase:        cfg.SentenceCase,
	}
}

func buildDictionary(cfg config.FilterConfig) []filter.DictionaryEntry {
	entries := make([]filter.DictionaryEntry, len(cfg.Dictionary))
	for i, e := range cfg.Dictionary {
		entries[i] = filter.DictionaryEntry{From: e.From, To: e.To, CaseSensitive: e.CaseSensitive}
	}
	return entries
}

func buildShortcutSpecs(cfg config.KeyboardConfig) []keyboard.ShortcutSpec {
	specs := make([]keyboard.ShortcutSpec, len(cfg.Shortcuts))
	for i, sc := range cfg.Shortcuts {
		specs[i] = keyboard.ShortcutSpec{
			ID:                 keyboard.ShortcutId(sc.ID),
			StandaloneModifier: keyboard.ModifierKey(sc.StandaloneModifier),
			Modifiers:          sc.Modifiers,
			MainKey:            sc.MainKey,
		}
	}
	return specs
}

func buildKeyboardEvents(p *pipeline.Pipeline, cfg *config.Config) keyboard.Events {
	recordingPath := func() string {
		return filepath.Join(os.TempDir(), "scribekey", fmt.Sprintf("rec-%d.wav", time.Now().UnixNano()))
	}

	return keyboard.Events{
		OnPressed: func(id keyboard.ShortcutId) {
			if id != "toggle_recording" {
				return
			}
			if p.IsRunning() {
				return
			}
			if _, err := p.StartRecording(recordingPath()); err != nil {
				slog.Warn("failed to start recording", "err", err)
			}
		},
		OnReleased: func(id keyboard.ShortcutId) {
			if id != "toggle_recording" || !p.IsRunning() {
				return
			}
			procCfg := pipeline.ProcessConfig{
				AutoCopy:           cfg.Output.AutoCopy,
				AutoPaste:          cfg.Output.AutoPaste,
				TextInserter:       pasteInserter(cfg.Output.PasteInitialDelayMs),
				EnhancementEnabled: cfg.Enhancer.Enabled,
				EnhancementModel:   cfg.Enhancer.Model,
				PromptTemplate:     enhancer.DefaultTemplate(),
			}
			go func() {
				if _, err := p.StopAndProcess(context.Background(), procCfg); err != nil {
					slog.Warn("pipeline processing failed", "err", err)
				}
			}()
		},
	}
}

// pasteInserter builds the PasteInserter text inserter. Synthesizing the
// platform paste chord requires OS-specific input injection that is out of
// scope for this module; SendPaste relies on the clipboard write alone and
// reports the missing chord so callers see it in logs rather than silent
// no-ops.
func pasteInserter(initialDelayMs int) indicator.TextInserter {
	delay := indicator.DefaultPasteInitialDelay
	if initialDelayMs > 0 {
		delay = time.Duration(initialDelayMs) * time.Millisecond
	}
	return indicator.PasteInserter{
		InitialDelay: delay,
		SendPaste: func() error {
			return errors.New("paste chord synthesis not implemented for this platform")
		},
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
