package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a JSON request body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFromError maps the service error taxonomy onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err using the status taxonomy. notFound is the
// message for a 404. Unexpected errors are logged and never echoed back.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error, notFound string) {
	status := statusFromError(err)

	switch status {
	case http.StatusBadRequest:
		respondError(w, status, validationMessage(err))
	case http.StatusConflict:
		respondError(w, status, "Username or email already exists")
	case http.StatusUnauthorized:
		respondError(w, status, "Invalid credentials")
	case http.StatusNotFound:
		respondError(w, status, notFound)
	default:
		log.Error(r.Context(), "request failed", "error", err)
		respondError(w, status, "Internal server error")
	}
}

// validationMessage turns "validation error: task text required" into
// "Task text required".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, common.ErrorValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(common.ErrorValidation.Error())+2:]
	}
	if msg == "" {
		return "Bad request"
	}
	first, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(first)) + msg[size:]
}
