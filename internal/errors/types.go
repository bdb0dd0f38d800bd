// Package errors provides custom error types for better error handling throughout the application.
// Errors carry the layer they originate from so callers can tell configuration
// problems, data integrity violations and collaborator failures apart without
// string matching.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error layers.
const (
	LayerConfig      = "config"
	LayerIntegrity   = "integrity"
	LayerSource      = "source"
	LayerDestination = "destination"
	LayerFile        = "file"
	LayerContext     = "context"
)

// LayeredError is an error tagged with the layer and operation that produced it.
type LayeredError struct {
	Layer     string            // e.g. "config", "integrity", "source"
	Operation string            // e.g. "create_issue"
	Message   string            // human readable description
	Cause     error             // underlying error, may be nil
	Context   map[string]string // extra key/value details
}

// NewLayeredError creates a LayeredError.
func NewLayeredError(layer, operation, message string, cause error) *LayeredError {
	return &LayeredError{
		Layer:     layer,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// Error implements the error interface.
func (e *LayeredError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s", e.Layer, e.Operation, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+e.Context[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *LayeredError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value detail and returns the same error.
func (e *LayeredError) WithContext(key, value string) *LayeredError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// ConfigError reports a missing or invalid setting.
func ConfigError(operation, message string, cause error) error {
	return NewLayeredError(LayerConfig, operation, message, cause)
}

// IntegrityError reports source data that violates an invariant the migration relies on.
func IntegrityError(operation, message string, cause error) error {
	return NewLayeredError(LayerIntegrity, operation, message, cause)
}

// SourceError reports a failed call to the work item tracking service.
func SourceError(operation, message string, cause error) error {
	return NewLayeredError(LayerSource, operation, message, cause)
}

// DestinationError reports a failed call to the issue service.
func DestinationError(operation, message string, cause error) error {
	return NewLayeredError(LayerDestination, operation, message, cause)
}

// FileError reports a local file operation failure.
func FileError(operation, message string, cause error) error {
	return NewLayeredError(LayerFile, operation, message, cause)
}

// IsLayeredError returns the LayeredError in err's chain, if any.
func IsLayeredError(err error) (*LayeredError, bool) {
	var layered *LayeredError
	if err != nil && stderrors.As(err, &layered) {
		return layered, true
	}
	return nil, false
}

// AsLayeredError returns the LayeredError in err's chain or nil.
func AsLayeredError(err error) *LayeredError {
	layered, _ := IsLayeredError(err)
	return layered
}

// IsLayer reports whether err carries a LayeredError of the given layer.
func IsLayer(err error, layer string) bool {
	layered, ok := IsLayeredError(err)
	return ok && layered.Layer == layer
}

// IsOperation reports whether err carries a LayeredError for the given operation.
func IsOperation(err error, operation string) bool {
	layered, ok := IsLayeredError(err)
	return ok && layered.Operation == operation
}

// IsIntegrity reports whether err is an integrity violation.
func IsIntegrity(err error) bool {
	return IsLayer(err, LayerIntegrity)
}

// WithContextSafe adds context when err is a LayeredError and returns err unchanged otherwise.
func WithContextSafe(err error, key, value string) error {
	if layered := AsLayeredError(err); layered != nil {
		layered.WithContext(key, value)
	}
	return err
}

// WrapWithOperation wraps err in a new LayeredError. A nil err stays nil.
func WrapWithOperation(err error, layer, operation, message string) error {
	if err == nil {
		return nil
	}
	return NewLayeredError(layer, operation, message, err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return err != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
}

// ContextError wraps cancellation and deadline errors with a readable message.
// Other errors are returned unchanged.
func ContextError(operation string, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		return NewLayeredError(LayerContext, operation, "operation was cancelled (interrupted by user)", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewLayeredError(LayerContext, operation, "operation timed out", err)
	default:
		return err
	}
}

// PartialFailureError represents an error where some operations succeeded and some failed.
// This allows callers to distinguish between complete failures and partial failures.
type PartialFailureError struct {
	Errors []string // Individual error messages for failed operations
}

// Error implements the error interface.
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("some items failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// NewPartialFailureError creates a new PartialFailureError with the given error messages.
func NewPartialFailureError(errors []string) *PartialFailureError {
	return &PartialFailureError{Errors: errors}
}

// IsPartialFailure checks if an error is a PartialFailureError.
func IsPartialFailure(err error) bool {
	var partial *PartialFailureError
	return err != nil && stderrors.As(err, &partial)
}

// ErrorCollector accumulates errors from a batch of independent operations.
type ErrorCollector struct {
	operation string
	errors    []error
}

// NewErrorCollector creates a collector for the named operation.
func NewErrorCollector(operation string) *ErrorCollector {
	return &ErrorCollector{operation: operation}
}

// Add records err; nil is ignored.
func (c *ErrorCollector) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Len returns the number of collected errors.
func (c *ErrorCollector) Len() int {
	return len(c.errors)
}

// Result returns nil, the single collected error, or a PartialFailureError.
func (c *ErrorCollector) Result() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	}
	messages := make([]string, 0, len(c.errors))
	for _, err := range c.errors {
		messages = append(messages, err.Error())
	}
	return NewPartialFailureError(messages)
}
