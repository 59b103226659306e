package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the class of failure inside the analysis pipeline
type ErrorCategory string

const (
	// Fatal categories abort the analysis of an instrument
	ErrorCategoryInput         ErrorCategory = "INPUT"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategorySimulation    ErrorCategory = "SIMULATION"
	ErrorCategoryData          ErrorCategory = "DATA"

	// Output failures happen after the analysis itself has completed
	ErrorCategoryOutput ErrorCategory = "OUTPUT"
)

// Sentinel errors shared across packages. Match them with errors.Is.
var (
	ErrEmptySeries       = stderrors.New("empty series")
	ErrNonMonotonicDates = stderrors.New("dates are not strictly increasing")
	ErrInvalidPrice      = stderrors.New("invalid price or volume")
	ErrLengthMismatch    = stderrors.New("column length mismatch")

	ErrPositionOpen   = stderrors.New("position already open")
	ErrPositionFlat   = stderrors.New("no open position")
	ErrOrderPending   = stderrors.New("an order is already pending")
	ErrNoPendingOrder = stderrors.New("no pending order")
)

// AnalysisError represents a categorized error with context
type AnalysisError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the error must abort the run for the instrument.
func (e *AnalysisError) IsFatal() bool {
	return e.Category != ErrorCategoryOutput
}

// WithContext adds context information to the error
func (e *AnalysisError) WithContext(key string, value interface{}) *AnalysisError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new categorized error
func New(category ErrorCategory, component, operation, message string) *AnalysisError {
	return &AnalysisError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Wrap wraps an existing error with analysis context. A nil err yields nil.
func Wrap(err error, category ErrorCategory, component, operation, message string) error {
	if err == nil {
		return nil
	}
	return &AnalysisError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    message,
		Underlying: err,
	}
}

func NewInputError(component, operation string, err error, format string, args ...interface{}) error {
	return Wrap(err, ErrorCategoryInput, component, operation, fmt.Sprintf(format, args...))
}

func NewSimulationError(component, operation string, err error, format string, args ...interface{}) error {
	return Wrap(err, ErrorCategorySimulation, component, operation, fmt.Sprintf(format, args...))
}

func NewConfigurationError(component, operation, message string) *AnalysisError {
	return New(ErrorCategoryConfiguration, component, operation, message)
}

// CategoryOf returns the category of the first AnalysisError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Category, true
	}
	return "", false
}

// IsFatal reports whether err carries a fatal category. Uncategorized errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.IsFatal()
	}
	return true
}
