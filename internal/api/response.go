package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
)

// envelope wraps every JSON response body, success or error.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// jsonResponse writes an enveloped JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Status: status, Message: message, Data: data}); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// jsonError writes an enveloped JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, message, nil)
}

// writeError maps err to a status code. Unexpected errors are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var te *auth.TokenError
	if errors.As(err, &te) {
		jsonError(w, http.StatusUnauthorized, tokenMessage(te.Kind))
		return
	}

	var me *model.Error
	if errors.As(err, &me) {
		jsonError(w, statusFor(me.Kind), me.Message)
		return
	}

	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
	jsonError(w, http.StatusInternalServerError, "internal server error")
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindInvalidArgument:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func tokenMessage(kind auth.FailureKind) string {
	switch kind {
	case auth.Malformed:
		return "malformed token"
	case auth.Expired:
		return "token has expired"
	case auth.Unsupported:
		return "unsupported token"
	}
	return "invalid token"
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
