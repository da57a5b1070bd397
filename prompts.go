package profileinator

import (
	"encoding/json"
	"strings"
)

// PromptSource tags where a parsed prompt list came from. The analysis reply
// is untrusted text; rather than guessing at its shape in an error handler,
// parsing yields an explicit union of the shapes we accept.
type PromptSource int

const (
	// PromptSourceList means the reply carried a parseable prompt list.
	PromptSourceList PromptSource = iota

	// PromptSourceRawText means the reply was plain text, treated as a
	// single-element prompt list.
	PromptSourceRawText

	// PromptSourceFailure means nothing usable could be extracted.
	PromptSourceFailure
)

// ParsedPrompts is the outcome of decoding an analysis reply.
type ParsedPrompts struct {
	Prompts []string
	Source  PromptSource
}

// promptEnvelope is the JSON shape the analysis instruction asks for.
type promptEnvelope struct {
	Prompts []string `json:"prompts"`
}

// ParsePromptResponse decodes the raw analysis reply. Accepted shapes, in
// order: a JSON object with a "prompts" list, a bare JSON list of strings,
// any other non-empty text as a single prompt. Blank replies and lists with
// no non-empty entries parse as a failure.
func ParsePromptResponse(raw string) ParsedPrompts {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return ParsedPrompts{Source: PromptSourceFailure}
	}

	var envelope promptEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Prompts != nil {
		if prompts := cleanPrompts(envelope.Prompts); len(prompts) > 0 {
			return ParsedPrompts{Prompts: prompts, Source: PromptSourceList}
		}
		return ParsedPrompts{Source: PromptSourceFailure}
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		if prompts := cleanPrompts(list); len(prompts) > 0 {
			return ParsedPrompts{Prompts: prompts, Source: PromptSourceList}
		}
		return ParsedPrompts{Source: PromptSourceFailure}
	}

	// Not JSON at all: treat the whole reply as one prompt.
	return ParsedPrompts{Prompts: []string{text}, Source: PromptSourceRawText}
}

// cleanPrompts drops empty entries and trims whitespace.
func cleanPrompts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// stripCodeFences removes a surrounding markdown code fence, which models
// add around JSON replies despite instructions not to.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag line ("json", etc.).
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
