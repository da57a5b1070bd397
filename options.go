package profileinator

import (
	"log/slog"

	"github.com/mhpenta/profileinator/ratelimiter"
)

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets a structured logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStorage sets a storage backend for archiving generated variants.
func WithStorage(storage Storage) ServiceOption {
	return func(s *Service) {
		s.storage = storage
	}
}

// WithStyles replaces the default style catalog. An empty catalog is ignored.
func WithStyles(styles []Style) ServiceOption {
	return func(s *Service) {
		if len(styles) > 0 {
			s.styles = styles
		}
	}
}

// WithRateLimiter registers a limiter for an operation
// (OperationAnalyze or OperationGenerate).
func WithRateLimiter(operation string, limiter ratelimiter.Limiter) ServiceOption {
	return func(s *Service) {
		s.limiters.Set(operation, limiter)
	}
}

// WithConcurrency bounds how many generation calls run at once.
// Values below 1 are ignored.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// WithTokenEstimator replaces the token estimator used for rate limiting.
func WithTokenEstimator(estimator TokenEstimator) ServiceOption {
	return func(s *Service) {
		if estimator != nil {
			s.tokenEstimator = estimator
		}
	}
}
