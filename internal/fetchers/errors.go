package fetchers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"weatherwidget/internal/models"
)

// StatusError is returned when a provider answers with a non-200 status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// NotFound reports a 404 answer
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Unauthorized reports a 401 answer
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// DecodeError is returned when a 200 answer cannot be parsed
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newStatusError(endpoint string, status int, body []byte) *StatusError {
	se := &StatusError{Endpoint: endpoint, StatusCode: status}
	var apiErr models.OWMError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		se.Message = apiErr.Message
	}
	return se
}
