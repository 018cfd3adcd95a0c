package tracker

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyID is returned when an id-addressed operation gets an empty id.
var ErrEmptyID = errors.New("error id is required")

// ErrDotSegmentID is returned for the ids "." and "..", which would be
// resolved away as path segments and address a different resource.
var ErrDotSegmentID = errors.New("error id must not be a dot segment")

// NetworkError means no response reached the client: dial failures,
// timeouts and cancellations all land here. These are retried only by the
// next scheduled poll.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: no response received from %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request was abandoned because it ran out of time.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) && t.Timeout() {
		return true
	}
	return false
}

// HTTPError means the service answered with a non-2xx status, or with a
// 2xx whose body could not be decoded. Err is set only in the latter case.
type HTTPError struct {
	Method     string
	URL        string
	Status     int
	StatusText string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP error! status: %d - %s: %v", e.Status, e.StatusText, e.Err)
	}
	return fmt.Sprintf("HTTP error! status: %d - %s", e.Status, e.StatusText)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NotFound reports whether the service answered 404.
func (e *HTTPError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// RequestError means the request could not be built, so nothing was sent.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a 404 from the service.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.NotFound()
}

// IsFetchError reports whether err belongs to the fetch error taxonomy.
func IsFetchError(err error) bool {
	var netErr *NetworkError
	var httpErr *HTTPError
	var reqErr *RequestError
	return errors.As(err, &netErr) || errors.As(err, &httpErr) || errors.As(err, &reqErr)
}

var errNegativePaging = errors.New("limit and offset must not be negative")
