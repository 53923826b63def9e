package transport

import (
	"net/http"
	"strconv"
	"strings"
)

// Response is the received HTTP response with the body already read.
type Response struct {
	StatusCode int
	// Reason is the reason phrase of the status line, e.g. "Bad Request".
	Reason string
	Header http.Header
	Body   []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the value of the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// ReasonFromStatus extracts the reason phrase from the status line ("400 Bad Request"),
// falling back to the standard text of the status code.
func ReasonFromStatus(status string, statusCode int) string {
	reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(statusCode)))
	if reason == "" {
		return http.StatusText(statusCode)
	}
	return reason
}
