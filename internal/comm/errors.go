package comm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// CommunicationError is the shared shape of every rejected server call. It
// keeps the full response so the caller can decide what to do with the
// failed round, the agent itself never retries.
type CommunicationError struct {
	Op         string
	StatusCode int
	Body       []byte
	Message    string
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.StatusCode, e.Message)
}

// ModelDownloadError reports a model download answered with anything but 200.
type ModelDownloadError struct {
	CommunicationError
}

// ModelUploadError reports a model upload answered with anything but 201.
type ModelUploadError struct {
	CommunicationError
}

// MetricsUploadError reports a metric upload answered with anything but 201.
type MetricsUploadError struct {
	CommunicationError
}

func newModelDownloadError(resp *http.Response, body []byte) *ModelDownloadError {
	return &ModelDownloadError{newCommunicationError("model download", resp, body)}
}

func newModelUploadError(resp *http.Response, body []byte) *ModelUploadError {
	return &ModelUploadError{newCommunicationError("model upload", resp, body)}
}

func newMetricsUploadError(resp *http.Response, body []byte) *MetricsUploadError {
	return &MetricsUploadError{newCommunicationError("metrics upload", resp, body)}
}

// newCommunicationError extracts a readable message from the response body.
// The FL server wraps its error messages as {"message": "..."}, anything
// else is reported verbatim.
func newCommunicationError(op string, resp *http.Response, body []byte) CommunicationError {
	message := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}
	if message == "" {
		message = "unexpected response"
	}
	return CommunicationError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       body,
		Message:    message,
	}
}
