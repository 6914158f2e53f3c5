package enhancer

import "strings"

// PromptTemplate is a named enhancement prompt with a "{text}" placeholder,
// per spec §4.14. Custom templates may be constructed directly; DefaultTemplates
// returns the built-in set.
type PromptTemplate struct {
	ID       string
	Name     string
	Template string
	Builtin  bool
}

// Render substitutes text for "{text}" in the template.
func (t PromptTemplate) Render(text string) string {
	return strings.ReplaceAll(t.Template, "{text}", text)
}

// DefaultTemplates returns the built-in prompt templates, grounded on
// original_source's prompts.rs builtin set.
func DefaultTemplates() []PromptTemplate {
	return []PromptTemplate{
		{
			ID:      "fix-grammar",
			Name:    "Fix Grammar",
			Builtin: true,
			Template: "Fix any grammar and spelling mistakes in the following text. Keep the original meaning, " +
				"tone, and length. Do not add extra content or explanations. Only output the corrected text:\n\n{text}",
		},
		{
			ID:      "make-professional",
			Name:    "Make Professional",
			Builtin: true,
			Template: "Rewrite the following text to be more professional and formal. Keep the same meaning and " +
				"approximate length. Do not add extra content or explanations. Only output the rewritten text:\n\n{text}",
		},
		{
			ID:      "make-casual",
			Name:    "Make Casual",
			Builtin: true,
			Template: "Rewrite the following text to be more casual and conversational. Keep the same meaning and " +
				"approximate length. Do not add extra content or explanations. Only output the rewritten text:\n\n{text}",
		},
		{
			ID:      "simplify",
			Name:    "Simplify",
			Builtin: true,
			Template: "Simplify the following text to be easier to understand. Use shorter sentences and simpler " +
				"words. Keep the same meaning and approximate length. Do not add extra content or explanations. " +
				"Only output the simplified text:\n\n{text}",
		},
		{
			ID:      "summarise",
			Name:    "Summarise",
			Builtin: true,
			Template: "Summarise the following text concisely in 1-2 sentences. Keep only the most important " +
				"points. Only output the summary:\n\n{text}",
		},
		{
			ID:      "expand",
			Name:    "Expand",
			Builtin: true,
			Template: "Expand the following text with 2-3x more detail and explanation. Keep the same style and " +
				"tone. Only output the expanded text:\n\n{text}",
		},
		{
			ID:      "email",
			Name:    "Email",
			Builtin: true,
			Template: "Rewrite the following text as a clear, polite email body. Keep the same meaning. Only " +
				"output the rewritten text:\n\n{text}",
		},
		{
			ID:      "notes",
			Name:    "Notes",
			Builtin: true,
			Template: "Rewrite the following text as concise bullet-point notes. Only output the bullet points:\n\n{text}",
		},
	}
}

// DefaultTemplate returns the default ("fix-grammar") prompt template, used
// when no explicit template is configured.
func DefaultTemplate() PromptTemplate {
	return DefaultTemplates()[0]
}
