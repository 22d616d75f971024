package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

var errTransient = errors.New("read benchmarks: input/output error")

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker("benchmarks", CircuitBreakerConfig{
		FailureThreshold: threshold,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 2,
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func noDelay() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BackoffFactor: 2}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	cb, now := newTestBreaker(2)
	fail := func() error { return errTransient }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Call(fail), errTransient)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(fail), errTransient)
	assert.Equal(t, StateOpen, cb.State())

	calls := 0
	err := cb.Call(func() error { calls++; return nil })
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUnavailable))
	assert.Equal(t, 0, calls)

	*now = now.Add(time.Minute)
	require.NoError(t, cb.Call(ok))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(1)

	_ = cb.Call(func() error { return errTransient })
	*now = now.Add(time.Minute)
	_ = cb.Call(func() error { return errTransient })
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "open", cb.GetStats()["state"])

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetryWithConfig(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", errs: []error{nil}, wantCalls: 1},
		{name: "recovers", errs: []error{errTransient, nil}, wantCalls: 2},
		{name: "exhausted", errs: []error{errTransient, errTransient, errTransient}, wantCalls: 3, wantErr: errTransient},
		{name: "not retryable", errs: []error{context.Canceled}, wantCalls: 1, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithConfig(context.Background(), noDelay(), func() error {
				e := tt.errs[calls]
				calls++
				return e
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, DefaultRetryConfig(), func() error { calls++; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(cfg, 0))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(cfg, 2))
	assert.Equal(t, time.Second, calculateDelay(cfg, 10))

	cfg.JitterEnabled = true
	d := calculateDelay(cfg, 0)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.Less(t, d, 110*time.Millisecond)
}

type stubSource struct {
	errs  []error
	calls int
}

func (s *stubSource) Load(sector string) (*analysis.Reference, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	ref := analysis.DefaultReference()
	ref.Sector = sector
	return ref, nil
}

func TestGuardedLoader(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		cb, _ := newTestBreaker(5)
		src := &stubSource{errs: []error{errTransient}}
		ref, err := NewGuardedLoader(src, cb, noDelay()).Load(context.Background(), "pharmaceutical")

		require.NoError(t, err)
		assert.Equal(t, "pharmaceutical", ref.Sector)
		assert.Equal(t, 2, src.calls)
	})

	t.Run("client errors pass through", func(t *testing.T) {
		cb, _ := newTestBreaker(1)
		src := &stubSource{errs: []error{apperrors.NewValidationError("invalid sector name")}}
		_, err := NewGuardedLoader(src, cb, noDelay()).Load(context.Background(), "..")

		assert.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
		assert.Equal(t, 1, src.calls)
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("persistent failure opens the breaker", func(t *testing.T) {
		cb, _ := newTestBreaker(2)
		src := &stubSource{errs: []error{errTransient, errTransient, errTransient}}
		loader := NewGuardedLoader(src, cb, noDelay())

		_, err := loader.Load(context.Background(), "automotive")
		assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUnavailable))
		assert.Equal(t, 2, src.calls)
		assert.Equal(t, StateOpen, loader.Breaker().State())

		_, err = loader.Load(context.Background(), "automotive")
		assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUnavailable))
		assert.Equal(t, 2, src.calls)
	})
}
