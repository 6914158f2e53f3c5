package config

// ConfigDiff describes what changed between two configs. Only fields that
// can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	ShortcutsChanged bool
	DictionaryChanged bool

	EnhancerChanged bool
}

// Diff compares old and new configs and returns what changed. Only tracks
// changes that are safe to apply without restart — the recognizer backend
// and audio device selection require a process restart and are not
// reported here.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !shortcutsEqual(old.Keyboard.Shortcuts, new.Keyboard.Shortcuts) {
		d.ShortcutsChanged = true
	}

	if !dictionaryEqual(old.Filter.Dictionary, new.Filter.Dictionary) {
		d.DictionaryChanged = true
	}

	oe, ne := old.Enhancer, new.Enhancer
	if oe.Enabled != ne.Enabled || oe.BaseURL != ne.BaseURL || oe.Model != ne.Model ||
		oe.DefaultTemplateID != ne.DefaultTemplateID || oe.TimeoutSeconds != ne.TimeoutSeconds ||
		!templatesEqual(oe.CustomTemplates, ne.CustomTemplates) {
		d.EnhancerChanged = true
	}

	return d
}

func shortcutsEqual(a, b []ShortcutConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].StandaloneModifier != b[i].StandaloneModifier ||
			a[i].MainKey != b[i].MainKey ||
			!stringSlicesEqual(a[i].Modifiers, b[i].Modifiers) {
			return false
		}
	}
	return true
}

func dictionaryEqual(a, b []DictionaryEntryConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func templatesEqual(a, b []PromptTemplateConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
