package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBodyTooLarge is returned when a response exceeds the configured
// body limit.
var ErrBodyTooLarge = errors.New("response body too large")

// ErrInvalidURL is returned when a page URL cannot even be turned into a
// request. Retrying cannot fix it.
var ErrInvalidURL = errors.New("invalid page URL")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Transient reports whether the status is worth retrying. Rate limiting
// and server errors are transient; missing or blocked pages are not.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusGone, http.StatusForbidden, http.StatusUnauthorized:
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsPermanentStatus reports whether err is a status error that retrying
// cannot fix.
func IsPermanentStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && !statusErr.Transient()
}
