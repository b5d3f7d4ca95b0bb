package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/metrics"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Accounts *auth.Accounts
	Metrics  *metrics.Collector
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Accounts.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, "user registered successfully", user)
}

// Signin handles POST /api/v1/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Accounts.Signin(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.Metrics.RecordSignin("ok")
	case errors.Is(err, auth.ErrAccountBanned):
		h.Metrics.RecordSignin("banned")
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.Metrics.RecordSignin("invalid")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, "login successful", result)
}

// Signout handles POST /api/v1/auth/signout.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Accounts.Signout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, "logged out", nil)
}
