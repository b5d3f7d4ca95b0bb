package api

import (
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/search"
)

// SearchHandler serves GET /api/v1/search.
type SearchHandler struct {
	Engine *search.Engine
}

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date or an RFC 3339 timestamp. A calendar
// end date covers the whole day.
func parseDate(param, v string, end bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, model.InvalidArgumentf("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", param)
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// Search handles GET /api/v1/search?type=&keyword=&location=&startDate=&endDate=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	t := q.Get("type")
	if t == "" {
		jsonError(w, http.StatusBadRequest, "type is required")
		return
	}
	kind, err := model.ParseKind(t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	from, err := parseDate("startDate", q.Get("startDate"), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDate("endDate", q.Get("endDate"), true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Engine.Search(r.Context(), search.Criteria{
		Kind:     kind,
		Keyword:  q.Get("keyword"),
		Location: q.Get("location"),
		From:     from,
		To:       to,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, "search results for "+string(kind)+" items", items)
}
