package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups crawl failures by where they happened
type ErrorKind string

func (k ErrorKind) String() string {
	return string(k)
}

const (
	ErrorKindNetwork    ErrorKind = "network"    // timeout, reset, non-2xx
	ErrorKindExtraction ErrorKind = "extraction" // script block missing or invalid JSON
	ErrorKindFilesystem ErrorKind = "filesystem" // mkdir or write denied
)

// ErrVehicleDataNotFound is returned when no script block carries the vehicle JSON
var ErrVehicleDataNotFound = errors.New("vehicleData script block not found")

// CrawlError represents a failure while fetching, extracting or persisting
type CrawlError struct {
	Kind    ErrorKind
	URL     string
	Message string
	Err     error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Kind, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.URL, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether trying the same request later could succeed
func (e *CrawlError) IsTransient() bool {
	return e.Kind == ErrorKindNetwork
}

func NewNetworkError(url, message string, err error) *CrawlError {
	return &CrawlError{Kind: ErrorKindNetwork, URL: url, Message: message, Err: err}
}

func NewExtractionError(url, message string, err error) *CrawlError {
	return &CrawlError{Kind: ErrorKindExtraction, URL: url, Message: message, Err: err}
}

func NewFilesystemError(path, message string, err error) *CrawlError {
	return &CrawlError{Kind: ErrorKindFilesystem, URL: path, Message: message, Err: err}
}
