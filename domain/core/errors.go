package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrAllocationNotFound = fmt.Errorf("%w: allocation", ErrNotFound)
	ErrDesignNotFound     = fmt.Errorf("%w: design", ErrNotFound)

	// Validation errors
	ErrInvalidConfiguration = errors.New("invalid randomization configuration")
	ErrInvalidEffectSize    = errors.New("invalid effect size")
	ErrInvalidDropoutRate   = errors.New("invalid dropout rate")
	ErrInvalidDesign        = errors.New("invalid study design")

	// Method support. Reported as a fallback notice, not returned as a failure.
	ErrUnsupportedMethod = errors.New("unsupported randomization method")

	// Enrollment errors
	ErrAllocationExhausted = errors.New("allocation sequence exhausted")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewAllocationNotFoundError(id AllocationID) error {
	return fmt.Errorf("%w with id %s", ErrAllocationNotFound, id)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, field, reason)
}

func NewEffectSizeError(value float64) error {
	return fmt.Errorf("%w: effect size must be a finite value > 0, got %v", ErrInvalidEffectSize, value)
}

func NewDropoutRateError(value float64) error {
	return fmt.Errorf("%w: dropout rate must be in [0,1), got %v", ErrInvalidDropoutRate, value)
}

func NewDesignError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDesign, field, reason)
}

func NewUnsupportedMethodError(method string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidEffectSize) ||
		errors.Is(err, ErrInvalidDropoutRate) ||
		errors.Is(err, ErrInvalidDesign)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
