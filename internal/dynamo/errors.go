package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for the particle cloud.
var (
	// ErrMalformedLandmarks indicates a hand with fewer points than the 21-point topology.
	ErrMalformedLandmarks = errors.New("dynamo: malformed hand landmarks")

	// ErrUnknownTemplate indicates a template name outside the known set.
	ErrUnknownTemplate = errors.New("dynamo: unknown template")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNoSession indicates a recorded session that does not exist or holds no frames.
	ErrNoSession = errors.New("dynamo: no such session")

	// ErrTrackerClosed indicates a tracker was used after Close.
	ErrTrackerClosed = errors.New("dynamo: tracker closed")
)

// ConfigError wraps ErrInvalidConfig with the offending field.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %v", ErrInvalidConfig, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
