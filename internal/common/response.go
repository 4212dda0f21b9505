package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Meta carries auxiliary response information such as timing or cache hints.
type Meta map[string]any

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the canonical response shape: {statusCode, message, data, meta}
// for single items, plus a pagination block for lists.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       Meta        `json:"meta,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
}

// JSON writes a single-item envelope to the response writer.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, Envelope{StatusCode: status, Message: message, Data: data})
}

// JSONList writes a list envelope including pagination metadata.
func JSONList(w http.ResponseWriter, status int, message string, data any, p Pagination) {
	writeEnvelope(w, Envelope{StatusCode: status, Message: message, Data: data, Pagination: &p})
}

// JSONMeta writes a single-item envelope with a meta block attached.
func JSONMeta(w http.ResponseWriter, status int, message string, data any, meta Meta) {
	writeEnvelope(w, Envelope{StatusCode: status, Message: message, Data: data, Meta: meta})
}

// JSONError renders an error response using the canonical envelope shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, Envelope{
		StatusCode: status,
		Message:    message,
		Error:      &ErrorBody{Code: code, Details: details},
	})
}

// WriteError maps an error to the envelope, honouring AppError codes.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		JSONError(w, status, code, message, appErr.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}
