// Package errors defines the structured error type shared by the
// registry, override, and injection layers, along with the error codes
// callers match on.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeRegistry ErrorType = "registry"
	ErrorTypeOverride ErrorType = "override"
	ErrorTypeScript   ErrorType = "script"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// StarlayError is a structured error type with context.
type StarlayError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Namespace   string
	Symbol      string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *StarlayError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Namespace != "" {
		parts = append(parts, "namespace:"+e.Namespace)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *StarlayError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *StarlayError) Is(target error) bool {
	var t *StarlayError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithFile adds the originating script file to the error.
func (e *StarlayError) WithFile(path string) *StarlayError {
	e.FilePath = path

	return e
}

// IsRecoverable checks if an error is recoverable. Registration and
// override installation failures are fatal to environment setup;
// lookup misses and flag coercion failures surface to the calling
// script and are recoverable.
func IsRecoverable(err error) bool {
	var se *StarlayError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// Code returns the error code of a StarlayError, or "" for other errors.
func Code(err error) string {
	var se *StarlayError
	if errors.As(err, &se) {
		return se.Code
	}

	return ""
}

// Common error codes.
const (
	ErrCodeDuplicateSymbol      = "ERR_DUPLICATE_SYMBOL"
	ErrCodeRegistryFrozen       = "ERR_REGISTRY_FROZEN"
	ErrCodeSymbolNotFound       = "ERR_SYMBOL_NOT_FOUND"
	ErrCodeUnknownBaseSymbol    = "ERR_UNKNOWN_BASE_SYMBOL"
	ErrCodeTableSealed          = "ERR_TABLE_SEALED"
	ErrCodeUnrepresentableValue = "ERR_UNREPRESENTABLE_VALUE"
	ErrCodeExportsInvalid       = "ERR_EXPORTS_INVALID"
	ErrCodeConfigInvalid        = "ERR_CONFIG_INVALID"
	ErrCodeInternalError        = "ERR_INTERNAL"
)

// Helper constructors for the error kinds the core raises.

// ErrDuplicateSymbol reports a second registration of the same name in
// one namespace.
func ErrDuplicateSymbol(namespace, name string) *StarlayError {
	return &StarlayError{
		Type:      ErrorTypeRegistry,
		Code:      ErrCodeDuplicateSymbol,
		Message:   "symbol already registered: " + name,
		Namespace: namespace,
		Symbol:    name,
	}
}

// ErrRegistryFrozen reports a registration attempted after Freeze.
func ErrRegistryFrozen(namespace, name string) *StarlayError {
	return &StarlayError{
		Type:      ErrorTypeRegistry,
		Code:      ErrCodeRegistryFrozen,
		Message:   "registry is frozen, cannot register: " + name,
		Namespace: namespace,
		Symbol:    name,
	}
}

// ErrSymbolNotFound reports an ordinary lookup miss.
func ErrSymbolNotFound(namespace, name string) *StarlayError {
	return &StarlayError{
		Type:        ErrorTypeRegistry,
		Code:        ErrCodeSymbolNotFound,
		Message:     "symbol not found: " + name,
		Namespace:   namespace,
		Symbol:      name,
		Recoverable: true,
	}
}

// ErrUnknownBaseSymbol reports an override naming a symbol absent from
// the frozen registry.
func ErrUnknownBaseSymbol(namespace, name string) *StarlayError {
	return &StarlayError{
		Type:      ErrorTypeOverride,
		Code:      ErrCodeUnknownBaseSymbol,
		Message:   "override names unknown base symbol: " + name,
		Namespace: namespace,
		Symbol:    name,
	}
}

// ErrTableSealed reports an install attempted after Seal.
func ErrTableSealed(namespace, name string) *StarlayError {
	return &StarlayError{
		Type:      ErrorTypeOverride,
		Code:      ErrCodeTableSealed,
		Message:   "override table is sealed, cannot install: " + name,
		Namespace: namespace,
		Symbol:    name,
	}
}

// ErrUnrepresentableValue reports a flag value with no Starlark
// representation.
func ErrUnrepresentableValue(name string, value interface{}) *StarlayError {
	return &StarlayError{
		Type:        ErrorTypeScript,
		Code:        ErrCodeUnrepresentableValue,
		Message:     fmt.Sprintf("flag %q has no Starlark representation (%T)", name, value),
		Symbol:      name,
		Recoverable: true,
	}
}

// ErrExportsInvalid reports a malformed exports file.
func ErrExportsInvalid(path, message string, cause error) *StarlayError {
	return &StarlayError{
		Type:     ErrorTypeScript,
		Code:     ErrCodeExportsInvalid,
		Message:  message,
		Cause:    cause,
		FilePath: path,
	}
}

// ErrConfigInvalid reports an invalid configuration value.
func ErrConfigInvalid(message string) *StarlayError {
	return &StarlayError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}
