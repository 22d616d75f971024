package resilience

import (
	"context"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// ReferenceSource loads sector reference tables.
type ReferenceSource interface {
	Load(sector string) (*analysis.Reference, error)
}

// GuardedLoader retries transient reference load failures and stops calling
// the source while it keeps failing. Client errors such as an invalid sector
// pass straight through and never trip the breaker.
type GuardedLoader struct {
	source  ReferenceSource
	breaker *CircuitBreaker
	retry   RetryConfig
}

// NewGuardedLoader wraps source.
func NewGuardedLoader(source ReferenceSource, breaker *CircuitBreaker, retry RetryConfig) *GuardedLoader {
	return &GuardedLoader{source: source, breaker: breaker, retry: retry}
}

// Load returns the reference table for sector.
func (g *GuardedLoader) Load(ctx context.Context, sector string) (*analysis.Reference, error) {
	var ref *analysis.Reference
	var clientErr error

	cfg := g.retry
	cfg.RetryableErrors = func(err error) bool {
		return g.breaker.State() != StateOpen && apperrors.IsRetryableError(err)
	}

	err := RetryWithConfig(ctx, cfg, func() error {
		return g.breaker.Call(func() error {
			r, err := g.source.Load(sector)
			if err != nil && !apperrors.IsRetryableError(err) {
				clientErr = err
				return nil
			}
			ref = r
			return err
		})
	})
	if clientErr != nil {
		return nil, clientErr
	}
	if err != nil {
		if apperrors.IsCategory(err, apperrors.CategoryUnavailable) {
			return nil, err
		}
		return nil, apperrors.NewUnavailableError("benchmark store unavailable", err)
	}
	return ref, nil
}

// Breaker exposes the underlying breaker for health reporting.
func (g *GuardedLoader) Breaker() *CircuitBreaker { return g.breaker }
