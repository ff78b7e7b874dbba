package errors

import "fmt"

// ErrorType represents different types of errors that can occur during a harvest
type ErrorType string

const (
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeStateBlob  ErrorType = "state_blob"
	ErrorTypeFilter     ErrorType = "filter"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a harvest error with type information
type Error struct {
	Type    ErrorType
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed Error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed Error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation, ErrorTypeTimeout:
		return true
	case ErrorTypeFilter, ErrorTypeParsing, ErrorTypeStateBlob, ErrorTypeStorage:
		return false
	default:
		return false
	}
}

// IsFatal checks if an error type must be surfaced to the caller rather
// than absorbed into a partial result. Only filter validation qualifies.
func IsFatal(errorType ErrorType) bool {
	return errorType == ErrorTypeFilter
}
