package unsplash

import (
	"errors"
	"fmt"
)

// ErrMissingAccessKey indicates no access key was configured
var ErrMissingAccessKey = errors.New("unsplash access key is not configured")

// ErrInvalidAccessKey indicates the configured access key was rejected
var ErrInvalidAccessKey = errors.New("invalid Unsplash access key")

// ErrRateLimited indicates the hourly request quota was used up
var ErrRateLimited = errors.New("unsplash API rate limit exceeded")

// ErrNoMorePages is returned by Pager.Next after the last page
var ErrNoMorePages = errors.New("no more pages")

// ServerError represents a 5xx error from the Unsplash API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Unsplash server error: HTTP %d", e.StatusCode)
}
