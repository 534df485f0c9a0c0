package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents HTTP fetch errors (bad status, transport failure)
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents HTML or value parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScraperError represents a scraper-specific error
type ScraperError struct {
	Type       ErrorType
	NodeID     string
	Message    string
	StatusCode int    // HTTP status for fetch errors, zero otherwise
	Received   string // offending input for validation errors
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.NodeID != "" {
		msg = fmt.Sprintf("%s: %s", e.NodeID, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s - %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScraperError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch:
		return e.StatusCode == 0 || e.StatusCode >= 500
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new ScraperError
func New(errType ErrorType, nodeID, message string, err error) *ScraperError {
	return &ScraperError{
		Type:    errType,
		NodeID:  nodeID,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a fetch error carrying the node identifier and HTTP status
func NewFetch(nodeID string, statusCode int, err error) *ScraperError {
	e := New(ErrorTypeFetch, nodeID, "error getting lot data", err)
	e.StatusCode = statusCode
	return e
}

// NewParsing creates a new parsing error
func NewParsing(nodeID, message string, err error) *ScraperError {
	return New(ErrorTypeParsing, nodeID, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(nodeID string, duration time.Duration) *ScraperError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, nodeID, message, nil)
}

// NewCache creates a new cache error
func NewCache(nodeID, message string, err error) *ScraperError {
	return New(ErrorTypeCache, nodeID, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(nodeID, message string, err error) *ScraperError {
	return New(ErrorTypePublisher, nodeID, message, err)
}

// NewValidation creates a validation error recording the received value
func NewValidation(message, received string) *ScraperError {
	e := New(ErrorTypeValidation, "", message, nil)
	e.Received = received
	return e
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsFetchError reports whether err is a fetch-typed ScraperError
func IsFetchError(err error) bool {
	var se *ScraperError
	return errors.As(err, &se) && se.Type == ErrorTypeFetch
}

// IsValidation reports whether err is a validation-typed ScraperError
func IsValidation(err error) bool {
	var se *ScraperError
	return errors.As(err, &se) && se.Type == ErrorTypeValidation
}
