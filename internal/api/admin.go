package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/moderation"
)

// AdminHandler serves the moderation endpoints. All routes require an admin token.
type AdminHandler struct {
	Moderation *moderation.Service
	Metrics    *metrics.Collector
}

type banRequest struct {
	IsBanned *bool `json:"is_banned"`
}

type itemStatusRequest struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// SetUserBan handles PATCH /api/v1/admin/users/{id}.
func (h *AdminHandler) SetUserBan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req banRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsBanned == nil {
		jsonError(w, http.StatusBadRequest, "is_banned field is required")
		return
	}

	user, err := h.Moderation.SetUserBanStatus(r.Context(), id, *req.IsBanned)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, "user status updated successfully", user)
}

// SetItemStatus handles PATCH /api/v1/admin/items/{id}.
func (h *AdminHandler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" || req.Type == "" {
		jsonError(w, http.StatusBadRequest, "status and type fields are required")
		return
	}

	if err := h.Moderation.SetItemStatus(r.Context(), id, req.Status, req.Type); err != nil {
		writeError(w, r, err)
		return
	}

	h.Metrics.RecordModeration(req.Type, req.Status)
	jsonResponse(w, http.StatusOK, "item status updated successfully", nil)
}

// Reports handles GET /api/v1/admin/reports.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	report, err := h.Moderation.SystemReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, "system reports retrieved successfully", report)
}
