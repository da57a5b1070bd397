package profileinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mhpenta/profileinator/ratelimiter"
	"golang.org/x/sync/errgroup"
)

// Operation names used to look up rate limiters in the registry.
const (
	OperationAnalyze  = "analyze"
	OperationGenerate = "generate"
)

// defaultConcurrency bounds how many generation calls run at once.
const defaultConcurrency = 4

// Service orchestrates the analyze-then-generate pipeline. It is stateless
// across requests; the only shared state is the long-lived Provider handle,
// which is read-only after construction.
//
// A nil Provider puts the Service in offline mode: every request yields
// placeholder variants and no external call is made. This is the behavior
// when no API credential is configured.
type Service struct {
	provider Provider

	styles []Style

	// Rate limiting (per operation)
	limiters ratelimiter.Registry

	// Storage for archiving generated variants (optional)
	storage Storage

	// Logger for structured logging
	logger *slog.Logger

	tokenEstimator TokenEstimator

	concurrency int
}

// NewService creates a Service around the given provider. A nil provider is
// allowed and selects offline mode.
//
// Example:
//
//	provider, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	svc := profileinator.NewService(provider,
//	    profileinator.WithLogger(slog.Default()),
//	)
func NewService(provider Provider, opts ...ServiceOption) *Service {
	s := &Service{
		provider:       provider,
		styles:         DefaultStyles(),
		limiters:       ratelimiter.NewRegistry(),
		logger:         slog.Default(),
		tokenEstimator: NewSimpleTokenEstimator(),
		concurrency:    defaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Close releases the underlying provider.
func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}

// Offline reports whether the service runs without a provider.
func (s *Service) Offline() bool {
	return s.provider == nil
}

// GenerateVariants produces exactly count variants of the uploaded image.
//
// The returned slice always has length count: slots whose generation failed
// carry empty data. Upstream failures (analysis, parsing, generation, rate
// limits) are recovered internally; the only errors returned are for invalid
// input.
func (s *Service) GenerateVariants(ctx context.Context, image InputImage, count int) ([]Variant, error) {
	if err := ValidateVariantCount(count); err != nil {
		return nil, err
	}
	if err := ValidateInputImage(image); err != nil {
		return nil, err
	}

	if s.provider == nil {
		s.logger.Info("no provider configured, returning placeholder variants",
			"count", count,
		)
		return placeholderVariants(count), nil
	}

	start := time.Now()

	prompts := s.suggestPrompts(ctx, image, count)
	variants := s.generateAll(ctx, prompts)

	// Defensive: the contract is exactly count entries, no matter what the
	// steps above produced.
	variants = normalizeLength(variants, count, Variant{})
	for i := range variants {
		variants[i].Index = i
	}

	failed := 0
	for _, v := range variants {
		if v.Failed() {
			failed++
		}
	}

	s.logger.Info("variant generation completed",
		"count", count,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.archive(ctx, variants)

	return variants, nil
}

// suggestPrompts runs the analysis call and always returns exactly count
// prompts. Any failure along the way falls back to catalog prompts.
func (s *Service) suggestPrompts(ctx context.Context, image InputImage, count int) []string {
	styles := selectStyles(s.styles, count)
	instruction := buildAnalysisInstruction(styles, count)

	if err := s.checkRateLimit(OperationAnalyze, instruction); err != nil {
		s.logger.Warn("analysis rate limit hit, using catalog prompts",
			"error", err.Error(),
		)
		return fallbackPrompts(s.styles, count)
	}

	raw, err := s.provider.Analyze(ctx, image, instruction)
	if err != nil {
		s.logger.Warn("analysis call failed, using catalog prompts",
			"error", err.Error(),
		)
		return fallbackPrompts(s.styles, count)
	}

	parsed := ParsePromptResponse(raw)
	switch parsed.Source {
	case PromptSourceList:
		s.logger.Debug("analysis returned prompt list",
			"prompts", len(parsed.Prompts),
		)
	case PromptSourceRawText:
		s.logger.Warn("analysis reply was not structured, treating as single prompt")
	case PromptSourceFailure:
		s.logger.Warn("analysis reply was unparseable, using catalog prompts")
		return fallbackPrompts(s.styles, count)
	}

	// Truncate extras; pad shortfalls by cycling the catalog so the prompt
	// count always reaches exactly count.
	prompts := parsed.Prompts
	if len(prompts) > count {
		prompts = prompts[:count]
	}
	for i := len(prompts); i < count; i++ {
		prompts = append(prompts, synthesizePrompt(s.styles[i%len(s.styles)]))
	}

	return prompts
}

// generateAll issues one generation call per prompt. Calls are independent:
// a failure in one slot never aborts the others.
func (s *Service) generateAll(ctx context.Context, prompts []string) []Variant {
	variants := make([]Variant, len(prompts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, prompt := range prompts {
		variants[i] = Variant{Prompt: prompt, Index: i}

		g.Go(func() error {
			img, err := s.generateOne(ctx, prompt)
			if err != nil {
				s.logger.Warn("variant generation failed",
					"index", i,
					"error", err.Error(),
				)
				return nil // failed slots stay empty, the loop continues
			}
			variants[i].Data = img.Data
			variants[i].MIMEType = img.MIMEType
			return nil
		})
	}

	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()

	return variants
}

func (s *Service) generateOne(ctx context.Context, prompt string) (*GeneratedImage, error) {
	framed := framePrompt(prompt)

	if err := s.checkRateLimit(OperationGenerate, framed); err != nil {
		return nil, err
	}

	img, err := s.provider.Generate(ctx, framed)
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("provider returned no image data")
	}
	return img, nil
}

// checkRateLimit consumes budget from the operation's limiter, if one is
// registered. A rejection is final for the slot: there is no retry.
func (s *Service) checkRateLimit(operation, prompt string) error {
	const tokenBuffer = 100

	limiter, ok := s.limiters.Get(operation)
	if !ok {
		return nil
	}

	estimatedTokens := s.tokenEstimator.EstimateTokens(prompt) + tokenBuffer

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  "tokens",
			Operation:  operation,
		}
	}

	return nil
}

// archive saves successful variants to storage, best-effort.
func (s *Service) archive(ctx context.Context, variants []Variant) {
	if s.storage == nil {
		return
	}

	basePath := time.Now().UTC().Format("20060102T150405") + "_" + uuid.NewString()[:8]
	results, err := SaveVariants(ctx, s.storage, variants, basePath)
	if err != nil {
		s.logger.Warn("failed to archive variants",
			"base_path", basePath,
			"error", err.Error(),
		)
		return
	}
	if len(results) > 0 {
		s.logger.Debug("archived variants",
			"base_path", basePath,
			"saved", len(results),
		)
	}
}

// placeholderVariants builds the offline-mode result: count failed slots.
func placeholderVariants(count int) []Variant {
	variants := make([]Variant, count)
	for i := range variants {
		variants[i].Index = i
	}
	return variants
}
