// Package rest exposes the game services over a JSON HTTP API.
package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

// Envelope is the uniform response wrapper. Every response carries success,
// exactly one of data or error, and a UTC timestamp.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorBody is the wire form of a failed operation.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any, now func() time.Time) {
	writeEnvelope(w, status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: now().UTC(),
	})
}

// writeError maps a domain error onto the envelope. Internal failures are
// logged with their cause but reach the client as an opaque message.
func writeError(w http.ResponseWriter, err error, now func() time.Time) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		message = "internal error"
	}
	writeEnvelope(w, status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    string(code),
			Message: message,
			Details: apperrors.MetadataOf(err),
		},
		Timestamp: now().UTC(),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// decodeBody decodes a JSON request body into target, rejecting unknown
// fields.
func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request body", err)
	}
	return nil
}
