package fetcher

import (
	"fmt"
	"net/http"
)

// Reason classifies why a fetch failed
type Reason string

const (
	// ReasonTransport covers timeouts, DNS and connection errors and unreadable bodies
	ReasonTransport Reason = "transport"
	// ReasonStatus is a non-2xx HTTP response
	ReasonStatus Reason = "status"
	// ReasonParse is a kept line whose fields are not numbers or not a calendar date
	ReasonParse Reason = "parse"
)

// FetchError is the failure half of a Result
type FetchError struct {
	Index  string
	Reason Reason
	Err    error
}

func newFetchError(index string, reason Reason, err error) *FetchError {
	return &FetchError{Index: index, Reason: reason, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Index, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError carries the HTTP status of a rejected response
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s for url: %s", e.Code, http.StatusText(e.Code), e.URL)
}

// ParseError points at the first line that could not be converted
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
