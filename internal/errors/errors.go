// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by a conversation turn. None of them is retried.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrArgumentParse   = errors.New("argument parse error")
	ErrModelRequest    = errors.New("model request failed")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrMissingAPIKey   = errors.New("api key not found")
	ErrInputValidation = errors.New("input validation failed")
)

// DataError represents a market data error for a ticker.
type DataError struct {
	Ticker  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Ticker, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Ticker, e.Message)
}

// Unwrap returns the underlying cause, or ErrDataUnavailable when none is set.
func (e *DataError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDataUnavailable
}

// Is lets errors.Is match ErrDataUnavailable even when a provider cause is wrapped.
func (e *DataError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// NewDataError creates a new DataError.
func NewDataError(ticker, message string, err error) *DataError {
	return &DataError{
		Ticker:  ticker,
		Message: message,
		Err:     err,
	}
}

// ToolError represents a registry miss.
type ToolError struct {
	Tool string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Tool)
}

func (e *ToolError) Unwrap() error {
	return ErrUnknownTool
}

// NewToolError creates a new ToolError.
func NewToolError(tool string) *ToolError {
	return &ToolError{Tool: tool}
}

// ArgumentError represents tool arguments that do not match the declared schema.
type ArgumentError struct {
	Tool    string
	Field   string
	Message string
	Err     error
}

func (e *ArgumentError) Error() string {
	field := e.Field
	if field == "" {
		field = "-"
	}
	if e.Err != nil {
		return fmt.Sprintf("argument error [%s.%s]: %s: %v", e.Tool, field, e.Message, e.Err)
	}
	return fmt.Sprintf("argument error [%s.%s]: %s", e.Tool, field, e.Message)
}

func (e *ArgumentError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrArgumentParse
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgumentParse
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(tool, field, message string, err error) *ArgumentError {
	return &ArgumentError{
		Tool:    tool,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ModelError represents a failed chat completion request.
type ModelError struct {
	Operation string
	Err       error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error [%s]: %v", e.Operation, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func (e *ModelError) Is(target error) bool {
	return target == ErrModelRequest
}

// NewModelError creates a new ModelError.
func NewModelError(operation string, err error) *ModelError {
	return &ModelError{
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Kind returns a short label for the error kind, used for metrics and display.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, ErrArgumentParse):
		return "argument_parse"
	case errors.Is(err, ErrModelRequest):
		return "model_request"
	default:
		return "error"
	}
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
