package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-telegram/services"
)

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func (s *Site) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Site) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleAPIList serves the changelist as JSON with the same q, p and filter parameters.
func (m *ModelAdmin[T]) handleAPIList(w http.ResponseWriter, r *http.Request) {
	items, count, err := m.List(r.Context(), m.listParams(r.URL.Query()))
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			m.site.writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		m.site.log.Error("api list failed", "model", m.Slug, "error", err)
		m.site.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []T{}
	}
	m.site.writeJSON(w, http.StatusOK, listResponse[T]{Count: count, Results: items})
}

func (m *ModelAdmin[T]) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	obj, err := m.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			m.site.writeError(w, http.StatusNotFound, "not found")
			return
		}
		m.site.log.Error("api get failed", "model", m.Slug, "id", id, "error", err)
		m.site.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	m.site.writeJSON(w, http.StatusOK, obj)
}
