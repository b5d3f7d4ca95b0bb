package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/najdeno/internal/item"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
)

// ItemsHandler serves the lost-items and found-items endpoints. Every method
// takes the item kind and returns the handler for that kind.
type ItemsHandler struct {
	Items     *item.Manager
	Metrics   *metrics.Collector
	MaxUpload int64
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.InvalidArgumentf("invalid item id")
	}
	return id, nil
}

// Create handles POST /api/v1/{kind}-items.
func (h *ItemsHandler) Create(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d item.Draft
		if err := decodeJSON(r, &d); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		it, err := h.Items.Create(r.Context(), kind, d, GetClaims(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}

		h.Metrics.RecordItemCreated(string(kind))
		jsonResponse(w, http.StatusCreated, string(kind)+" item reported successfully", it)
	}
}

// Get handles GET /api/v1/{kind}-items/{id}.
func (h *ItemsHandler) Get(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		it, err := h.Items.Get(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		jsonResponse(w, http.StatusOK, string(kind)+" item retrieved successfully", it)
	}
}

// Update handles PATCH /api/v1/{kind}-items/{id}.
func (h *ItemsHandler) Update(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var p item.Patch
		if err := decodeJSON(r, &p); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		it, err := h.Items.Update(r.Context(), kind, id, p, GetClaims(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}

		jsonResponse(w, http.StatusOK, string(kind)+" item updated successfully", it)
	}
}

// Delete handles DELETE /api/v1/{kind}-items/{id}.
func (h *ItemsHandler) Delete(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.Items.Delete(r.Context(), kind, id, GetClaims(r.Context())); err != nil {
			writeError(w, r, err)
			return
		}

		jsonResponse(w, http.StatusOK, string(kind)+" item deleted successfully", nil)
	}
}

// UploadImage handles PUT /api/v1/{kind}-items/{id}/image. The photo is sent
// as the "image" field of a multipart form.
func (h *ItemsHandler) UploadImage(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Leave room for the multipart framing around the file.
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload+64<<10)
		if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
				return
			}
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "image file required")
			return
		}
		defer file.Close()

		it, err := h.Items.SetImage(r.Context(), kind, id, file, GetClaims(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}

		jsonResponse(w, http.StatusOK, "image uploaded", it)
	}
}

// GetImage handles GET /api/v1/{kind}-items/{id}/image.
func (h *ItemsHandler) GetImage(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		data, mime, err := h.Items.Image(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", mime)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(data)
	}
}

// List handles GET /api/v1/items?type=lost|found. Without a type both lists
// are returned.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("type")
	if t == "" {
		lost, err := h.Items.List(r.Context(), model.KindLost)
		if err != nil {
			writeError(w, r, err)
			return
		}
		found, err := h.Items.List(r.Context(), model.KindFound)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, "all items retrieved successfully", map[string][]model.Item{
			"lost_items":  lost,
			"found_items": found,
		})
		return
	}

	kind, err := model.ParseKind(t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.Items.List(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, string(kind)+" items retrieved successfully", items)
}

// Stats handles GET /api/v1/items/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Items.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, "item statistics retrieved successfully", stats)
}
