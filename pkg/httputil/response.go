// Package httputil provides the JSON response helpers shared by the HTTP
// handlers.
//
// Errors are written as
//
//	{"error": {"code": "INVALID_GEOMETRY", "field": "gap", "message": "..."}}
//
// with the status taken from [errors.HTTPStatus].
package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sersmask/pkg/errors"
)

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("encode json response", "error", err)
	}
}

// WriteError writes err as a JSON error. Uncoded errors become
// INTERNAL_ERROR with status 500.
func WriteError(w http.ResponseWriter, err error) {
	body := ErrorBody{Code: errors.GetCode(err), Message: err.Error()}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		body.Field = e.Field
	}
	WriteJSON(w, errors.HTTPStatus(err), map[string]ErrorBody{"error": body})
}

// BadRequest writes a 400 INVALID_INPUT error with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, errors.New(errors.ErrCodeInvalidInput, "%s", msg))
}
