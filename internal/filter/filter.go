// Package filter implements deterministic transcript post-processing:
// dictionary substitution, filler-word removal, punctuation cleanup,
// whitespace normalization, sentence-case capitalization, and paragraph
// formatting.
//
// Grounded on original_source/src-tauri/src/transcription/filter.rs and
// original_source/src-tauri/src/dictionary.rs, the Rust implementation this
// package's regexes and substitution algorithm are translated from.
package filter

import (
	"regexp"
	"sort"
	"strings"
)

var (
	fillerPattern              = regexp.MustCompile(`(?i)\b(u+[hm]+|e+r+|a+h+|like,?\s+|you know,?\s*|y'know,?\s*)\b`)
	multiSpacePattern          = regexp.MustCompile(` {2,}`)
	duplicatePeriodPattern     = regexp.MustCompile(`\.{2,}`)
	duplicateExclaimPattern    = regexp.MustCompile(`!{2,}`)
	duplicateQuestionPattern   = regexp.MustCompile(`\?{2,}`)
	spaceBeforePunctPattern    = regexp.MustCompile(`\s+([.!?,;:])`)
	missingSpaceAfterPunct     = regexp.MustCompile(`([.!?,;:])([A-Za-z])`)
	sentenceStartPattern       = regexp.MustCompile(`(^|[.!?]\s+)([a-z])`)
	paragraphWordThreshold int = 50
)

// Options selects which operations Filter applies, and in what
// configuration, mirroring spec §4.7's operation list.
type Options struct {
	ApplyDictionary    bool
	RemoveFillers      bool
	CleanupPunctuation bool
	NormalizeWhitespace bool
	SentenceCase       bool
}

// DefaultOptions matches the teacher-original's defaults: every cleanup
// operation on, sentence case off, dictionary substitution on.
func DefaultOptions() Options {
	return Options{
		ApplyDictionary:     true,
		RemoveFillers:       true,
		CleanupPunctuation:  true,
		NormalizeWhitespace: true,
		SentenceCase:        false,
	}
}

// DictionaryEntry is a single user-configured word/phrase substitution.
type DictionaryEntry struct {
	From          string
	To            string
	CaseSensitive bool
}

// Filter applies the configured sequence of deterministic transforms to a
// raw transcript. It is stateless and safe for concurrent use.
type Filter struct {
	options Options
	dict    []DictionaryEntry
}

// New constructs a Filter with the given options and dictionary entries.
// Entries are sorted longest-From-first internally so a shorter entry can
// never shadow a longer one sharing a prefix, per spec §4.13.
func New(options Options, dict []DictionaryEntry) *Filter {
	sorted := append([]DictionaryEntry(nil), dict...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].From) > len(sorted[j].From)
	})
	return &Filter{options: options, dict: sorted}
}

// WithDefaults constructs a Filter using DefaultOptions and no dictionary.
func WithDefaults() *Filter {
	return New(DefaultOptions(), nil)
}

// Filter runs the configured operations over text, in the fixed order spec
// §4.7 mandates: dictionary substitution, filler removal, punctuation
// cleanup, whitespace normalization, sentence case.
func (f *Filter) Filter(text string) string {
	result := text

	if f.options.ApplyDictionary {
		result = ApplyDictionary(result, f.dict)
	}
	if f.options.RemoveFillers {
		result = RemoveFillerWords(result)
	}
	if f.options.CleanupPunctuation {
		result = CleanupPunctuation(result)
	}
	if f.options.NormalizeWhitespace {
		result = NormalizeWhitespace(result)
	}
	if f.options.SentenceCase {
		result = ApplySentenceCase(result)
	}
	return result
}

// RemoveFillerWords strips common filler words and hesitation sounds.
func RemoveFillerWords(text string) string {
	return fillerPattern.ReplaceAllString(text, "")
}

// NormalizeWhitespace collapses runs of 2+ spaces to one and trims the
// result.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(text, " "))
}

// CleanupPunctuation collapses repeated terminal punctuation, removes
// whitespace before punctuation, and inserts a space after punctuation
// immediately followed by a letter.
func CleanupPunctuation(text string) string {
	result := duplicatePeriodPattern.ReplaceAllString(text, ".")
	result = duplicateExclaimPattern.ReplaceAllString(result, "!")
	result = duplicateQuestionPattern.ReplaceAllString(result, "?")
	result = spaceBeforePunctPattern.ReplaceAllString(result, "$1")
	result = missingSpaceAfterPunct.ReplaceAllString(result, "$1 $2")
	return result
}

// ApplySentenceCase uppercases the first alphabetic character at the start
// of text and immediately after [.!?] followed by whitespace.
func ApplySentenceCase(text string) string {
	return sentenceStartPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := sentenceStartPattern.FindStringSubmatch(match)
		return groups[1] + strings.ToUpper(groups[2])
	})
}

// FormatParagraphs inserts a paragraph break (two newlines) at the first
// sentence-ending punctuation after each ~50-word boundary. Text shorter
// than the threshold is returned unchanged.
func FormatParagraphs(text string) string {
	words := strings.Fields(text)
	if len(words) < paragraphWordThreshold {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 32)

	wordCount := 0
	lookingForBreak := false
	for i, word := range words {
		if i > 0 {
			if lookingForBreak && endsSentence(words[i-1]) {
				b.WriteString("\n\n")
				lookingForBreak = false
				wordCount = 0
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(word)
		wordCount++
		if wordCount >= paragraphWordThreshold && !lookingForBreak {
			lookingForBreak = true
		}
	}
	return b.String()
}

func endsSentence(word string) bool {
	if word == "" {
		return false
	}
	switch word[len(word)-1] {
	case '.', '?', '!':
		return true
	default:
		return false
	}
}

// ApplyDictionary applies each entry's substitution in order. entries
// should already be sorted longest-From-first (New does this); a caller
// invoking ApplyDictionary directly with an unsorted slice loses that
// shadowing guarantee.
func ApplyDictionary(text string, entries []DictionaryEntry) string {
	if len(entries) == 0 {
		return text
	}
	result := text
	for _, e := range entries {
		if e.CaseSensitive {
			result = strings.ReplaceAll(result, e.From, e.To)
		} else {
			result = replaceCaseInsensitive(result, e.From, e.To)
		}
	}
	return result
}

// replaceCaseInsensitive finds match positions by lower-casing a copy of
// the haystack, then substitutes the original-cased span with to — so the
// replacement text is never itself rescanned for further matches.
func replaceCaseInsensitive(text, from, to string) string {
	if from == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerFrom := strings.ToLower(from)

	var b strings.Builder
	b.Grow(len(text))
	lastEnd := 0
	for {
		idx := strings.Index(lowerText[lastEnd:], lowerFrom)
		if idx < 0 {
			break
		}
		start := lastEnd + idx
		b.WriteString(text[lastEnd:start])
		b.WriteString(to)
		lastEnd = start + len(from)
	}
	b.WriteString(text[lastEnd:])
	return b.String()
}
