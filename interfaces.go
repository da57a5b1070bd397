// Package profileinator turns one uploaded photo into a fixed number of
// professional profile-picture variants.
//
// The pipeline is a two-stage call against a multimodal provider: an analysis
// call that suggests one styling prompt per variant, then one generation call
// per prompt. Every provider failure is recovered locally - a failed analysis
// falls back to catalog prompts and a failed generation leaves an empty slot -
// so the caller always receives exactly the number of variants it asked for.
package profileinator

import "context"

// Analyzer submits an image plus an instruction to a vision-capable model and
// returns the raw text of the model's reply. Parsing the reply into prompts is
// the caller's job; the model is an untrusted boundary and its output shape is
// not guaranteed.
type Analyzer interface {
	Analyze(ctx context.Context, image InputImage, instruction string) (string, error)
}

// Generator produces a single image from a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// Provider is the full vendor surface the Service depends on.
// Implement this interface to add support for new model backends.
type Provider interface {
	Analyzer
	Generator

	// Close releases any resources held by the provider.
	Close() error
}
