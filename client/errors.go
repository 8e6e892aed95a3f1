package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the server does not know the proof
	ErrNotFound = errors.New("proof not found")
	// ErrPending is returned when the digest has not been anchored yet
	ErrPending = errors.New("not yet anchored, try again later")
	// ErrBadResponse is returned when a response body cannot be used
	ErrBadResponse = errors.New("bad response from server")
)

// StatusError carries an HTTP status the client has no mapping for
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether the request may succeed when repeated
func (e *StatusError) Temporary() bool {
	return temporary(e.StatusCode)
}

func temporary(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}
