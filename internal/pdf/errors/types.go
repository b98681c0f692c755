package errors

import (
	"errors"
	"fmt"
	"strings"
)

// FillError represents a document generation failure with its category and context
type FillError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Document string    `json:"document,omitempty"`
	Context  string    `json:"context,omitempty"`
	Err      error     `json:"-"`
}

// ErrorType represents the categories a caller can react to
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInput
	ErrorTypeUnknownDocument
	ErrorTypeConfiguration
	ErrorTypeRendering
)

// Error implements the error interface
func (e *FillError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Type.String())
	if e.Document != "" {
		fmt.Fprintf(&b, "%s: ", e.Document)
	}
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, ": %s", e.Context)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *FillError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInput:
		return "INPUT_ERROR"
	case ErrorTypeUnknownDocument:
		return "UNKNOWN_DOCUMENT"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeRendering:
		return "RENDERING_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Code returns the lower-case identifier reported to API clients
func (et ErrorType) Code() string {
	return strings.ToLower(et.String())
}

// MarshalText encodes the type as its Code
func (et ErrorType) MarshalText() ([]byte, error) {
	return []byte(et.Code()), nil
}

// New creates a new FillError
func New(errorType ErrorType, message string) *FillError {
	return &FillError{
		Type:    errorType,
		Message: message,
	}
}

// Newf creates a new FillError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *FillError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps err as a FillError of the given type
func Wrap(errorType ErrorType, message string, err error) *FillError {
	return &FillError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithContext adds context to an existing FillError
func (e *FillError) WithContext(context string) *FillError {
	e.Context = context
	return e
}

// WithDocument records the document id the failure belongs to
func (e *FillError) WithDocument(document string) *FillError {
	e.Document = document
	return e
}

// As returns the first FillError in err's chain.
func As(err error) (*FillError, bool) {
	var fe *FillError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// TypeOf returns the category of err, or ErrorTypeUnknown when err carries none
func TypeOf(err error) ErrorType {
	if fe, ok := As(err); ok {
		return fe.Type
	}
	return ErrorTypeUnknown
}

func IsInput(err error) bool         { return TypeOf(err) == ErrorTypeInput }
func IsNotFound(err error) bool      { return TypeOf(err) == ErrorTypeUnknownDocument }
func IsConfiguration(err error) bool { return TypeOf(err) == ErrorTypeConfiguration }

// Recover runs fn and converts a panic into a rendering error for document.
func Recover(document string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Newf(ErrorTypeRendering, "unexpected failure: %v", r).WithDocument(document)
		}
	}()
	return fn()
}

// FailureCollection gathers the documents a batch had to omit
type FailureCollection struct {
	Failures []*FillError `json:"failures"`
}

// NewFailureCollection creates an empty collection
func NewFailureCollection() *FailureCollection {
	return &FailureCollection{Failures: make([]*FillError, 0)}
}

// Add records err, converting plain errors to FillError
func (fc *FailureCollection) Add(document string, err error) {
	fe, ok := As(err)
	if !ok {
		fe = Wrap(ErrorTypeUnknown, "generation failed", err)
	}
	if fe.Document == "" {
		fe.Document = document
	}
	fc.Failures = append(fc.Failures, fe)
}

// Count returns the number of recorded failures
func (fc *FailureCollection) Count() int {
	return len(fc.Failures)
}

// Documents returns the ids of the omitted documents in insertion order
func (fc *FailureCollection) Documents() []string {
	docs := make([]string, 0, len(fc.Failures))
	for _, f := range fc.Failures {
		docs = append(docs, f.Document)
	}
	return docs
}

// Dominant returns the type shared by every failure, or ErrorTypeRendering
// when the failures are mixed.
func (fc *FailureCollection) Dominant() ErrorType {
	if len(fc.Failures) == 0 {
		return ErrorTypeUnknown
	}
	t := fc.Failures[0].Type
	for _, f := range fc.Failures[1:] {
		if f.Type != t {
			return ErrorTypeRendering
		}
	}
	return t
}

// Summary returns a text summary of all failures
func (fc *FailureCollection) Summary() string {
	if len(fc.Failures) == 0 {
		return "No failures"
	}
	parts := make([]string, 0, len(fc.Failures))
	for _, f := range fc.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%d document(s) omitted: %s", len(fc.Failures), strings.Join(parts, "; "))
}
