package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	cblog "github.com/charmbracelet/log"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	ShouldRetry  func(*apperrors.FleetError) bool
}

// NetworkConfig is optimized for network operations. Only transport-level
// failures are retried; application-level outcomes are data, not retryable
// errors, and never reach this layer.
var NetworkConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   1.5,
	Jitter:       true,
	ShouldRetry:  NetworkShouldRetry,
}

// RetryFunc is a function that can be retried
type RetryFunc func(attempt int) error

// RetryWithBackoff executes a function with exponential backoff retry logic
func RetryWithBackoff(ctx context.Context, config RetryConfig, name string, fn RetryFunc) error {
	logger := cblog.With("component", "retry", "op", name)

	var lastErr *apperrors.FleetError

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded", "attempt", attempt)
			}
			return nil
		}

		lastErr = apperrors.AsFleetError(err)
		logger.Warn("Attempt failed", "attempt", attempt, "max", config.MaxAttempts, "err", lastErr.Error())

		if !config.ShouldRetry(lastErr) {
			logger.Debug("Not retrying", "category", lastErr.Category)
			return lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.ErrorTimeout, "RETRY_CANCELLED", "Retry cancelled due to context")
		case <-time.After(calculateDelay(attempt, config)):
		}
	}

	return lastErr.WithContext("retryAttempts", config.MaxAttempts)
}

// calculateDelay calculates the delay for the next retry attempt
func calculateDelay(attempt int, config RetryConfig) time.Duration {
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1)))

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	// 10% jitter to prevent thundering herd
	if config.Jitter {
		delay += time.Duration(rand.Float64() * float64(delay) * 0.1)
	}

	return delay
}

// NetworkShouldRetry determines if network errors should be retried
func NetworkShouldRetry(err *apperrors.FleetError) bool {
	if err == nil {
		return false
	}

	switch err.Category {
	case apperrors.ErrorNetwork, apperrors.ErrorTimeout:
		return true
	case apperrors.ErrorAuth, apperrors.ErrorValidation, apperrors.ErrorPermission:
		return false
	default:
		return err.Recoverable
	}
}

// RetryNetworkOperation retries a network operation with the network config
func RetryNetworkOperation(ctx context.Context, name string, fn RetryFunc) error {
	return RetryWithBackoff(ctx, NetworkConfig, name, fn)
}
