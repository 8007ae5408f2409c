package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// FromResponseBody builds an HTTPError out of a failed backend response. A body holding a JSON
// string is unquoted so the text can be shown as-is.
func FromResponseBody(code int, body []byte) *HTTPError {
	msg := strings.TrimSpace(string(body))
	var quoted string
	if err := json.Unmarshal([]byte(msg), &quoted); err == nil {
		msg = quoted
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return NewHTTPError(code, msg)
}

// MessageOf returns the text to show for err: the backend payload when there was a response,
// the error itself otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Message
	}
	return err.Error()
}
