package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"protanni/internal/store"
)

// Error codes carried in failure envelopes.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeServerError     = "SERVER_ERROR"
	CodeDatabaseError   = "DATABASE_ERROR"
)

var codeStatus = map[string]int{
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeValidationError: http.StatusBadRequest,
	CodeConflict:        http.StatusConflict,
	CodeServerError:     http.StatusInternalServerError,
	CodeDatabaseError:   http.StatusBadGateway,
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

// apiError is a handler failure with its envelope code.
type apiError struct {
	Code    string
	Message string
	Details any
}

func (e *apiError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func failf(code, format string, args ...any) *apiError {
	return &apiError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// toAPIError maps store and handler errors onto envelope codes.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var nf store.NotFoundError
	if errors.As(err, &nf) {
		return &apiError{Code: CodeNotFound, Message: nf.Error()}
	}
	var ve store.ValidationError
	if errors.As(err, &ve) {
		return &apiError{Code: CodeValidationError, Message: ve.Msg}
	}
	return &apiError{Code: CodeDatabaseError, Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

func writeFailure(w http.ResponseWriter, e *apiError) {
	status, ok := codeStatus[e.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, envelope{OK: false, Error: &errorBody{Code: e.Code, Message: e.Message, Details: e.Details}})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return failf(CodeValidationError, "request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return failf(CodeValidationError, "invalid JSON body")
	}
	return nil
}
