package news

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoData marks a valid reply with no items. It is not a failure.
var ErrNoData = errors.New("no items for this date")

// TransportError is a failure to reach the webhook at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError is a non-2xx reply. Body is kept verbatim.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.StatusCode, e.Detail())
}

// Detail is the raw body, or the status text when the body is blank.
func (e *BackendError) Detail() string {
	if strings.TrimSpace(e.Body) == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Body
}

func (e *BackendError) HTTPStatus() int { return e.StatusCode }

type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedResponseError{Reason: fmt.Sprintf(format, args...)}
}

// noticeError carries the backend's informational [{"message": ...}] reply.
type noticeError struct {
	Message string
}

func (e *noticeError) Error() string { return e.Message }
