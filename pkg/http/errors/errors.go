package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse is the JSON envelope every failing endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var codeStatus = map[string]int{
	ErrCodeUnauthorized:           http.StatusUnauthorized,
	ErrCodeInvalidToken:           http.StatusUnauthorized,
	ErrCodeTokenExpired:           http.StatusUnauthorized,
	ErrCodeAuthenticationRequired: http.StatusUnauthorized,
	ErrCodeInvalidRequest:         http.StatusBadRequest,
	ErrCodeMissingField:           http.StatusBadRequest,
	ErrCodeInvalidOption:          http.StatusBadRequest,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeQuestionNotFound:       http.StatusNotFound,
	ErrCodeRateLimited:            http.StatusTooManyRequests,
	ErrCodeInternalError:          http.StatusInternalServerError,
	ErrCodeStatsFetchFailed:       http.StatusInternalServerError,
	ErrCodeServiceUnavailable:     http.StatusServiceUnavailable,
	ErrCodeUpstreamError:          http.StatusBadGateway,
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func write(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Respond writes code with the status StatusFor assigns to it.
func Respond(w http.ResponseWriter, code, message string) {
	write(w, StatusFor(code), ErrorResponse{Error: code, Message: message})
}

// RespondError writes the envelope with an explicit status.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, ErrorResponse{Error: code, Message: message})
}

// RespondValidationError is a 400 naming the offending request field.
func RespondValidationError(w http.ResponseWriter, code, message, field string) {
	write(w, http.StatusBadRequest, ErrorResponse{Error: code, Message: message, Field: field})
}

func RespondInternalError(w http.ResponseWriter, message string) {
	Respond(w, ErrCodeInternalError, message)
}

func RespondNotFound(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusNotFound, code, message)
}

func RespondUnauthorized(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusUnauthorized, code, message)
}

func RespondBadRequest(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusBadRequest, code, message)
}

func RespondServiceUnavailable(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusServiceUnavailable, code, message)
}

func RespondBadGateway(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusBadGateway, code, message)
}

// RespondTooManyRequests also sets Retry-After when retryAfterSeconds is positive.
func RespondTooManyRequests(w http.ResponseWriter, message string, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	Respond(w, ErrCodeRateLimited, message)
}
