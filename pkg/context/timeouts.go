package context

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/darksworm/argofleet/pkg/errors"
)

// TimeoutConfig holds timeout configuration for different operations
type TimeoutConfig struct {
	Default time.Duration
	API     time.Duration
	Auth    time.Duration
	Sync    time.Duration
}

// DefaultTimeouts provides sensible defaults for different operation types
var DefaultTimeouts = TimeoutConfig{
	Default: 5 * time.Second,
	API:     5 * time.Second,
	Auth:    5 * time.Second,
	Sync:    10 * time.Second,
}

// OperationType represents different types of operations that need timeouts
type OperationType string

const (
	OpDefault OperationType = "default"
	OpAPI     OperationType = "api"
	OpAuth    OperationType = "auth"
	OpSync    OperationType = "sync"
)

// WithTimeout creates a context with timeout based on operation type
func WithTimeout(parent context.Context, opType OperationType) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeoutFor(opType))
}

// WithAPITimeout creates a context specifically for API operations
func WithAPITimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpAPI)
}

// WithAuthTimeout creates a context specifically for authentication operations
func WithAuthTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpAuth)
}

// WithSyncTimeout creates a context specifically for sync operations
func WithSyncTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpSync)
}

func timeoutFor(opType OperationType) time.Duration {
	switch opType {
	case OpAPI:
		return DefaultTimeouts.API
	case OpAuth:
		return DefaultTimeouts.Auth
	case OpSync:
		return DefaultTimeouts.Sync
	default:
		return DefaultTimeouts.Default
	}
}

// HandleTimeout converts a context timeout error to a structured error
func HandleTimeout(ctx context.Context, opType OperationType) *apperrors.FleetError {
	if ctx.Err() == context.DeadlineExceeded {
		return apperrors.TimeoutError(
			"OPERATION_TIMEOUT",
			fmt.Sprintf("Operation timed out after %v", timeoutFor(opType)),
		).WithDetails(fmt.Sprintf("Operation type: %s", opType))
	}

	if ctx.Err() == context.Canceled {
		return apperrors.New(
			apperrors.ErrorInternal,
			"OPERATION_CANCELED",
			"Operation was canceled",
		).WithDetails(fmt.Sprintf("Operation type: %s", opType))
	}

	return nil
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	if err == context.DeadlineExceeded {
		return true
	}
	if fe, ok := err.(*apperrors.FleetError); ok {
		return fe.IsCategory(apperrors.ErrorTimeout)
	}
	return false
}
