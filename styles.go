package profileinator

import (
	"fmt"
	"strings"
)

// Style names a professional photo style from the fixed catalog. The catalog
// drives both the analysis instruction and the synthesized fallback prompts,
// so a request can always be filled even when the analysis call fails.
type Style string

const (
	StyleCorporate  Style = "corporate"
	StyleCreative   Style = "creative"
	StyleFriendly   Style = "friendly"
	StyleMinimalist Style = "minimalist"
	StyleExecutive  Style = "executive"
	StyleTech       Style = "tech"
	StyleOutdoor    Style = "outdoor"
	StyleStudio     Style = "studio"
)

// DefaultStyles returns the style catalog in its fixed order.
// Styles are selected in order up to the requested variant count.
func DefaultStyles() []Style {
	return []Style{
		StyleCorporate,
		StyleCreative,
		StyleFriendly,
		StyleMinimalist,
		StyleExecutive,
		StyleTech,
		StyleOutdoor,
		StyleStudio,
	}
}

// selectStyles picks count styles from the catalog in order, cycling when
// count exceeds the catalog length.
func selectStyles(styles []Style, count int) []Style {
	if len(styles) == 0 {
		styles = DefaultStyles()
	}

	selected := make([]Style, count)
	for i := 0; i < count; i++ {
		selected[i] = styles[i%len(styles)]
	}
	return selected
}

// buildAnalysisInstruction builds the instruction sent alongside the uploaded
// image. The model is asked for a single JSON object so the reply can be
// parsed; ParsePromptResponse handles every other shape it sends back anyway.
func buildAnalysisInstruction(styles []Style, count int) string {
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = string(s)
	}

	return fmt.Sprintf(
		"You are a professional portrait photographer. Study the person in this photo "+
			"and write %d distinct image-generation prompts, one per style in this order: %s. "+
			"Each prompt must describe a professional profile picture of this person in that style, "+
			"keeping their likeness. Respond with a single JSON object of the form "+
			`{"prompts": ["...", "..."]} and nothing else.`,
		count, strings.Join(names, ", "))
}

// synthesizePrompt returns a generic prompt for a style. Used when the
// analysis call fails or returns fewer prompts than requested.
func synthesizePrompt(style Style) string {
	return fmt.Sprintf("A professional %s style profile picture of the person in the photo, "+
		"well lit, sharp focus, neutral background", style)
}

// fallbackPrompts synthesizes count generic prompts cycling through the catalog.
func fallbackPrompts(styles []Style, count int) []string {
	selected := selectStyles(styles, count)
	prompts := make([]string, count)
	for i, s := range selected {
		prompts[i] = synthesizePrompt(s)
	}
	return prompts
}

// framePrompt wraps a styling prompt with the fixed profile-picture framing
// passed to the image model.
func framePrompt(prompt string) string {
	return "Create a professional profile picture. " + prompt
}
