package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  domain.Code `json:"code,omitempty"`
}

// MessageResponse is the body of message-only successes
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain code to the status the API reports. Missing rows
// are a client error (400), not 404.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeValidation, domain.CodeNotFound:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the domain message for client errors and with
// fallback for everything else, logging the cause.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		if status := statusFor(derr.Code); status < http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: derr.Message, Code: derr.Code})
			return
		}
	}

	log.Error(fallback,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fallback, Code: domain.CodeInternal})
}
