// Package apiresp writes the JSON envelopes every API endpoint returns.
//
// Success:
//
//	{ "statusCode": 201, "message": "NGO registration successful", "data": {...}, "success": true }
//
// Failure:
//
//	{ "statusCode": 409, "message": "...", "errors": [{"field":"email","kind":"conflict"}], "success": false }
package apiresp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
)

// RetryAfterSeconds is sent with transient upload failures.
const RetryAfterSeconds = "5"

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

type FieldError struct {
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind"`
}

type ErrorEnvelope struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors"`
	Success    bool         `json:"success"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{StatusCode: status, Message: message, Data: data, Success: true})
}

// Error writes the failure envelope for err. Server faults never leak their
// message.
func Error(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)

	msg := "Internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) && apperr.IsClientFacing(kind) {
		msg = ae.Message
	}
	if kind == apperr.KindUploadFailed && apperr.IsTransient(err) {
		w.Header().Set("Retry-After", RetryAfterSeconds)
	}

	write(w, status, ErrorEnvelope{
		StatusCode: status,
		Message:    msg,
		Errors:     []FieldError{{Field: apperr.FieldOf(err), Kind: string(kind)}},
		Success:    false,
	})
}

// Fail writes a failure envelope that carries no error kind, for statuses
// raised by the router itself.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, ErrorEnvelope{StatusCode: status, Message: message, Errors: []FieldError{}, Success: false})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
