package filter

import (
	"strings"
	"testing"
)

func TestRemoveFillerWords(t *testing.T) {
	cases := map[string]string{
		"I um think so":               "I  think so",
		"Um hello":                    " hello",
		"hello um":                    "hello ",
		"I uh need help":              "I  need help",
		"I er don't know":             "I  don't know",
		"Ah I see":                    " I see",
		"I was like thinking":         "I was thinking",
		"I was, you know, thinking":   "I was, thinking",
		"I was, y'know, busy":         "I was, busy",
		"UM hello":                    " hello",
	}
	for in, want := range cases {
		if got := RemoveFillerWords(in); got != want {
			t.Errorf("RemoveFillerWords(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("hello  world"); got != "hello world" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeWhitespace("  hello  "); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeWhitespace(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestCleanupPunctuation(t *testing.T) {
	cases := map[string]string{
		"Hello...":    "Hello.",
		"Wow!!":       "Wow!",
		"Really??":    "Really?",
		"Hello .":     "Hello.",
		"Hello.World": "Hello. World",
		"Hello ...World": "Hello. World",
	}
	for in, want := range cases {
		if got := CleanupPunctuation(in); got != want {
			t.Errorf("CleanupPunctuation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplySentenceCase(t *testing.T) {
	cases := map[string]string{
		"hello world":                    "Hello world",
		"hello. world":                   "Hello. World",
		"what? yes":                      "What? Yes",
		"hello. how are you? fine! good.": "Hello. How are you? Fine! Good.",
	}
	for in, want := range cases {
		if got := ApplySentenceCase(in); got != want {
			t.Errorf("ApplySentenceCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterRealWorldTranscription(t *testing.T) {
	f := New(Options{
		RemoveFillers:       true,
		NormalizeWhitespace: true,
		CleanupPunctuation:  true,
		SentenceCase:        true,
		ApplyDictionary:     false,
	}, nil)

	input := "um so like I was thinking you know about the project...and uh I think we should like move forward with it what do you think ??"
	want := "So I was thinking about the project. And I think we should move forward with it what do you think?"
	if got := f.Filter(input); got != want {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
}

func TestFilterNoOptionsLeavesTextUnchanged(t *testing.T) {
	f := New(Options{}, nil)
	input := "um  hello..."
	if got := f.Filter(input); got != input {
		t.Errorf("Filter() = %q, want unchanged %q", got, input)
	}
}

func TestApplyDictionaryCaseInsensitive(t *testing.T) {
	entries := []DictionaryEntry{{From: "hello", To: "hi"}}
	got := ApplyDictionary("Hello World HELLO world", entries)
	if got != "hi World hi world" {
		t.Errorf("got %q", got)
	}
}

func TestApplyDictionaryCaseSensitive(t *testing.T) {
	entries := []DictionaryEntry{{From: "hello", To: "hi", CaseSensitive: true}}
	got := ApplyDictionary("Hello hello HELLO", entries)
	if got != "Hello hi HELLO" {
		t.Errorf("got %q", got)
	}
}

func TestApplyDictionaryLongestFromFirst(t *testing.T) {
	f := New(DefaultOptions(), []DictionaryEntry{
		{From: "go", To: "golang"},
		{From: "go fast", To: "accelerate"},
	})
	got := f.Filter("please go fast today")
	if !strings.Contains(got, "accelerate") {
		t.Errorf("expected longest entry to win, got %q", got)
	}
}

func TestFormatParagraphsShortTextUnchanged(t *testing.T) {
	text := "This is a short sentence. It has fewer than fifty words."
	if got := FormatParagraphs(text); got != text {
		t.Errorf("got %q", got)
	}
}

func TestFormatParagraphsInsertsBreakAtSentenceBoundary(t *testing.T) {
	words := make([]string, 0, 62)
	for i := 0; i < 52; i++ {
		if i == 51 {
			words = append(words, "end.")
		} else {
			words = append(words, "word")
		}
	}
	for i := 0; i < 10; i++ {
		words = append(words, "more")
	}
	text := strings.Join(words, " ")
	result := FormatParagraphs(text)

	if !strings.Contains(result, "\n\n") {
		t.Fatalf("expected paragraph break, got %q", result)
	}
	before := strings.SplitN(result, "\n\n", 2)[0]
	if !strings.HasSuffix(before, "end.") {
		t.Errorf("break should follow sentence-ending punctuation, got %q", before)
	}
}

func TestFormatParagraphsNoSentenceBoundaryNoBreak(t *testing.T) {
	words := make([]string, 70)
	for i := range words {
		words[i] = "word"
	}
	result := FormatParagraphs(strings.Join(words, " "))
	if strings.Contains(result, "\n\n") {
		t.Errorf("should not insert break without a sentence boundary, got %q", result)
	}
}
