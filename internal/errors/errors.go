// Package errors provides centralized error handling with component and
// category context attached to every error that crosses a package boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryGeometry       ErrorCategory = "geometry"
	CategoryImageFetch     ErrorCategory = "image-fetch"
	CategoryImageProvider  ErrorCategory = "image-provider"
	CategoryClassification ErrorCategory = "classification"
	CategoryAggregation    ErrorCategory = "aggregation"
	CategoryWeather        ErrorCategory = "weather"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryNetwork        ErrorCategory = "network"
	CategoryTimeout        ErrorCategory = "timeout"
	CategoryHTTP           ErrorCategory = "http-request"
	CategoryGeneric        ErrorCategory = "generic"
)

// ComponentUnknown is used when no component was set on an error.
const ComponentUnknown = "unknown"

// Sentinel errors for conditions callers branch on. Wrap them with the
// builder so the category and context survive errors.Is checks.
var (
	// ErrInvalidGeometry indicates a polygon with fewer than three vertices
	// or no enclosed area. Rejected before any external call is made.
	ErrInvalidGeometry = stderrors.New("invalid geometry")

	// ErrNoSuccessfulSamples indicates aggregation received zero successful
	// classification results.
	ErrNoSuccessfulSamples = stderrors.New("no successful samples to aggregate")

	// ErrTotalClassificationFailure indicates every sample in a plan failed.
	// Callers substitute the degraded-mode fallback verdict instead of
	// surfacing this to the end user.
	ErrTotalClassificationFailure = stderrors.New("all sample classifications failed")
)

// EnhancedError wraps an error with component, category and context data.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	mu sync.RWMutex
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is implements error type checking
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return Is(ee.Err, target)
}

// GetComponent returns the component name
func (ee *EnhancedError) GetComponent() string {
	if ee.Component == "" {
		return ComponentUnknown
	}
	return ee.Component
}

// GetCategory returns the error category
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetContext returns a copy of the error context
func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()

	if ee.Context == nil {
		return nil
	}
	contextCopy := make(map[string]any, len(ee.Context))
	maps.Copy(contextCopy, ee.Context)
	return contextCopy
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new builder from a formatted error
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category for better grouping
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds context data to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// NetworkContext adds network-specific context
func (eb *ErrorBuilder) NetworkContext(url string, timeout time.Duration) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	if url != "" {
		eb.context["url"] = url
	}
	if timeout > 0 {
		eb.context["timeout_seconds"] = timeout.Seconds()
	}
	return eb
}

// Timing adds operation timing context
func (eb *ErrorBuilder) Timing(operation string, duration time.Duration) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context["operation"] = operation
	eb.context["duration_ms"] = duration.Milliseconds()
	return eb
}

// Build creates the final enhanced error
func (eb *ErrorBuilder) Build() *EnhancedError {
	category := eb.category
	if category == "" {
		category = CategoryGeneric
	}
	return &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
}

// --- stdlib passthroughs so callers only import this package ---

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join wraps stdlib errors.Join.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
