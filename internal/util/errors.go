package util

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is matched by every InvalidConfigurationError
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidInput is matched by every InvalidInputError
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidConfigurationError signals a parameter that cannot be used to run a
// simulation step, like a non-positive time step or a non-finite gain.
type InvalidConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func NewInvalidConfigurationError(field string, value float64, reason string) *InvalidConfigurationError {
	return &InvalidConfigurationError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidConfiguration, e.Field, e.Reason, e.Value)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// InvalidInputError signals a non-finite signal reaching the plant or controller.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func NewInvalidInputError(field string, value float64, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidInput, e.Field, e.Reason, e.Value)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsRecoverable returns true for errors that only invalidate a single simulation step
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) || errors.Is(err, ErrInvalidInput)
}
