package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDomain indicates that the provided domain string is invalid
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrReportNotReady indicates that the backend has not materialized a report yet
	ErrReportNotReady = errors.New("site report not ready")

	// ErrJobNotVisible indicates a job id the status store does not know yet
	ErrJobNotVisible = errors.New("job not yet visible")

	// ErrBackendUnavailable indicates the backend could not be reached
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrCacheMiss indicates that no value exists for the requested cache key
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrSessionClosed indicates an operation on a closed poll session
	ErrSessionClosed = errors.New("poll session closed")
)

// DomainError represents an error specific to a domain operation
type DomainError struct {
	Domain  string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("domain %s: %s: %v", e.Domain, e.Message, e.Err)
	}
	return fmt.Sprintf("domain %s: %s", e.Domain, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain-specific error
func NewDomainError(domain, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Message: message,
		Err:     err,
	}
}
