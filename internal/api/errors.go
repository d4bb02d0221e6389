package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"thirdvoice.ai/third-voice/internal/auth"
	"thirdvoice.ai/third-voice/internal/core"
	"thirdvoice.ai/third-voice/internal/store"
)

// Error carries the HTTP status and machine-readable code for a failure.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

var errorMappings = []struct {
	target error
	status int
	code   string
}{
	{core.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
	{core.ErrInvalidContext, http.StatusBadRequest, "invalid_context"},
	{core.ErrInvalidContactName, http.StatusBadRequest, "invalid_contact_name"},
	{core.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{core.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
	{core.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
	{core.ErrPasswordTooLong, http.StatusBadRequest, "password_too_long"},
	{core.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{core.ErrSessionNotFound, http.StatusUnauthorized, "unauthorized"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrDuplicateContact, http.StatusConflict, "duplicate_contact"},
	{store.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{core.ErrCompletionTimeout, http.StatusGatewayTimeout, "completion_timeout"},
	{core.ErrEmptyCompletion, http.StatusBadGateway, "completion_failed"},
	{core.ErrCompletionFailed, http.StatusBadGateway, "completion_failed"},
}

// toAPIError classifies err. Unknown errors become a 500 whose message does
// not leak the cause.
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return NewError(m.status, m.code, m.target)
		}
	}
	return NewError(http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, apiErr *Error) {
	msg := apiErr.Error()
	respondJSON(w, apiErr.Status, errorEnvelope{Error: errorBody{Message: msg, Code: apiErr.Code}})
}
