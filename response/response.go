// Package response shapes every API answer: the success envelope, the error
// envelope and the paginated page descriptor.
package response

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope wraps successful responses.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Source  string `json:"source,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is written for every failure.
type ErrorBody struct {
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes {status:"success", message, data}.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Sourced is Success tagged with where the data came from.
func Sourced(w http.ResponseWriter, message, source string, data any) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Source: source, Data: data})
}

// Error writes the error envelope. An empty message uses the code's default.
func Error(w http.ResponseWriter, r *http.Request, code Code, message string, details any) {
	if message == "" {
		message = code.Message
	}
	JSON(w, code.Status, ErrorBody{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Path:      r.URL.RequestURI(),
		Status:    code.Status,
		Code:      code.Name,
		Message:   message,
		Details:   details,
	})
}

// Marshal encodes v with the same codec used for responses.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
