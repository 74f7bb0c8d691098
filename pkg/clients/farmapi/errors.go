package farmapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingToken is returned when a login or register response carries no
// usable access token.
var ErrMissingToken = errors.New("auth response carried no token")

// ErrRefreshUnsupported is returned by Refresh when the deployed backend has no
// refresh endpoint configured.
var ErrRefreshUnsupported = errors.New("token refresh is not supported by this backend")

// HTTPError is a non-2xx response. Message is the normalized backend error.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NetworkError is a request that never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status of err, or 0 when err is not an HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credentials.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
