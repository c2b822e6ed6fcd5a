package http

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrTransport wraps failures to reach a remote host at all, including timeouts
var ErrTransport = errors.New("transport failure")

// StatusError is returned when a remote host answers with a non 2xx status
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// DecodeError is returned when a response body cannot be decoded into the expected shape
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the remote host could not serve the request
func IsUnavailable(err error) bool {
	var statusErr *StatusError
	return errors.Is(err, ErrTransport) || errors.As(err, &statusErr)
}

// IsDecode reports whether err is a response decoding failure
func IsDecode(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// StatusCode returns the response status carried by err, or 0
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

var secretParams = []string{"apikey", "X-Plex-Token"}

// Redact removes credentials passed as query parameters from rawURL
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}

	if changed {
		u.RawQuery = q.Encode()
	}

	return u.String()
}
