package errorwrapper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrTimeout              = errors.New("operation timed out")
	ErrNetworkFailure       = errors.New("network failure")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrCheckSkipped marks an index that was never dispatched because shutdown began.
	ErrCheckSkipped = errors.New("check skipped")
)

// WrapError prefixes err with message, keeping it matchable with errors.Is/As.
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ValidationError rejects a single input value
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Message)
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError lists every problem found in the loaded configuration.
// It is fatal at startup.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "configuration validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func NewConfigurationError(problems ...string) *ConfigurationError {
	return &ConfigurationError{Problems: problems}
}
