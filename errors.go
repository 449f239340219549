package trafficlight

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents specific error conditions of a light
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Simulate was called on a light that is already ticking
	ErrCodeAlreadySimulating
	// The operation needs a light that has been started
	ErrCodeNotSimulating
	// The light has been stopped and cannot be restarted
	ErrCodeStopped
	// Light configuration is invalid
	ErrCodeInvalidConfiguration
	// A bounded wait ran out of time
	ErrCodeTimeout
	// A value other than Red or Green was used as a phase
	ErrCodeInvalidPhase
)

// LightError represents light lifecycle errors
type LightError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *LightError) Error() string {
	return fmt.Sprintf("light error during %s: %s", e.Operation, e.Message)
}

// Is matches any LightError with the same code, so the sentinel values below
// can be used with errors.Is
func (e *LightError) Is(target error) bool {
	t, ok := target.(*LightError)
	return ok && t.Code == e.Code
}

// NewLightError creates a new light error
func NewLightError(code ErrorCode, operation string, message string) *LightError {
	return &LightError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

var (
	// ErrAlreadySimulating is returned by a second call to Simulate
	ErrAlreadySimulating = NewLightError(ErrCodeAlreadySimulating, "Simulate", "light is already simulating")

	// ErrNotSimulating is returned by Stop on a light that was never started
	ErrNotSimulating = NewLightError(ErrCodeNotSimulating, "Stop", "light is not simulating")

	// ErrStopped is returned when using a light that has been stopped
	ErrStopped = NewLightError(ErrCodeStopped, "Simulate", "light has been stopped")

	errWaitStopped = NewLightError(ErrCodeStopped, "WaitForGreen", "light has been stopped")
)

// ConfigurationError represents light configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// TimeoutError is returned when a bounded wait expires
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s timed out after %s", e.Operation, e.Timeout)
	}
	return fmt.Sprintf("%s timed out", e.Operation)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Timeout:   timeout,
	}
}

// IsLightError checks if an error is a LightError
func IsLightError(err error) bool {
	var e *LightError
	return errors.As(err, &e)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsTimeoutError checks if an error is a TimeoutError
func IsTimeoutError(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		le *LightError
		ce *ConfigurationError
		te *TimeoutError
	)
	switch {
	case errors.As(err, &le):
		return le.Code
	case errors.As(err, &ce):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &te):
		return ErrCodeTimeout
	default:
		return ErrCodeNone
	}
}
