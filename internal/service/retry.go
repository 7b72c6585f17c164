package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

// retryPolicy bounds retries of transient store failures. Domain
// outcomes (not found, conflict, duplicate) are permanent and returned
// immediately.
type retryPolicy struct {
	maxAttempts     uint64
	initialInterval backoff.ExponentialBackOff
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	eb := backoff.ExponentialBackOff{
		InitialInterval:     cfg.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	return retryPolicy{maxAttempts: attempts, initialInterval: eb}
}

// run executes op with exponential backoff. Repository sentinel errors
// short-circuit as permanent; exhausting the attempt budget wraps the
// last error in entity.ErrUnavailable.
func (p retryPolicy) run(ctx context.Context, op func() error) error {
	eb := p.initialInterval
	eb.Reset()

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&eb, p.maxAttempts-1), ctx)
	if err := backoff.Retry(wrapped, policy); err != nil {
		if isPermanent(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", entity.ErrUnavailable, err)
	}
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrConflict) ||
		errors.Is(err, repository.ErrDuplicate)
}
