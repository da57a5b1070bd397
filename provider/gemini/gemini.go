// Package gemini provides a Provider implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
//
// Analysis and generation use separate models: a vision-capable text model
// suggests styling prompts from the uploaded photo, and an image model renders
// one variant per prompt.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mhpenta/profileinator"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelAnalysis is the default vision model for prompt suggestion.
	APIModelAnalysis = "gemini-2.5-flash"

	// APIModelImage is the default image generation model.
	APIModelImage = "gemini-2.5-flash-image"
)

// Config configures the Gemini provider.
type Config struct {
	// APIKey for authentication. If empty, the SDK falls back to the
	// GOOGLE_API_KEY or GEMINI_API_KEY env vars.
	APIKey string

	// AnalysisModel overrides the default vision model.
	AnalysisModel string

	// ImageModel overrides the default image generation model.
	ImageModel string
}

// Provider implements profileinator.Provider using Google's Gemini API.
type Provider struct {
	client         *genai.Client
	analysisModel  string
	imageModel     string
	safetySettings []*genai.SafetySetting
}

// Ensure Provider implements the interface.
var _ profileinator.Provider = (*Provider)(nil)

// New creates a new Provider from a Config.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = &Config{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &Provider{
		client:        client,
		analysisModel: config.AnalysisModel,
		imageModel:    config.ImageModel,
	}
	if p.analysisModel == "" {
		p.analysisModel = APIModelAnalysis
	}
	if p.imageModel == "" {
		p.imageModel = APIModelImage
	}

	return p, nil
}

// NewWithAPIKey creates a provider with an API key and default models.
func NewWithAPIKey(ctx context.Context, apiKey string) (*Provider, error) {
	return New(ctx, &Config{APIKey: apiKey})
}

// SetSafetySettings configures safety settings applied to all requests.
func (p *Provider) SetSafetySettings(settings []*genai.SafetySetting) *Provider {
	p.safetySettings = settings
	return p
}

// Analyze submits the image inline with the instruction and returns the
// model's raw text reply. The response MIME type is pinned to JSON to nudge
// the model toward the structured shape the instruction asks for.
func (p *Provider) Analyze(ctx context.Context, image profileinator.InputImage, instruction string) (string, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						Data:     image.Data,
						MIMEType: image.MIMEType,
					},
				},
				{Text: instruction},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SafetySettings:   p.safetySettings,
	}

	result, err := p.client.Models.GenerateContent(ctx, p.analysisModel, contents, genConfig)
	if err != nil {
		if rlErr := checkRateLimitError(err, "analyze"); rlErr != nil {
			return "", rlErr
		}
		return "", fmt.Errorf("analysis failed: %w", err)
	}

	text := extractText(result)
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Generate renders a single square image from a text prompt.
func (p *Provider) Generate(ctx context.Context, prompt string) (*profileinator.GeneratedImage, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		// Enable image output
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: "1:1", // profile pictures are square
		},
		SafetySettings: p.safetySettings,
	}

	result, err := p.client.Models.GenerateContent(ctx, p.imageModel, contents, genConfig)
	if err != nil {
		if rlErr := checkRateLimitError(err, "generate"); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	img := extractImage(result)
	if img == nil {
		return nil, errors.New("no image data in response")
	}
	return img, nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// extractText concatenates the text parts of a response.
func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}

// extractImage returns the first inline image part of a response, or nil.
func extractImage(result *genai.GenerateContentResponse) *profileinator.GeneratedImage {
	if result == nil {
		return nil
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &profileinator.GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}
			}
		}
	}
	return nil
}

// checkRateLimitError checks if an error from the Gemini API is a rate limit error.
// If so, it wraps it in a RateLimitError for standardized handling; otherwise returns the original error.
func checkRateLimitError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return err
	}

	return &profileinator.RateLimitError{
		RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Operation:  operation,
		Err:        err,
	}
}
