package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bookloader/bookloader/internal/isbn"
)

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("isbn")
	if id == "" {
		h.writeError(w, "Missing isbn parameter", http.StatusBadRequest)
		return
	}

	record, err := h.catalogingService.Lookup(r.Context(), id)
	if errors.Is(err, isbn.ErrInvalid) {
		h.writeError(w, "Invalid ISBN: "+id, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.recordStore.Set(record)
	h.writeJSON(w, record.Map())
}

func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records := h.recordStore.List()
		recordList := make([]map[string]any, 0, len(records))
		for _, record := range records {
			recordList = append(recordList, record.Map())
		}
		h.writeJSON(w, recordList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleRecordDetail(w http.ResponseWriter, r *http.Request) {
	id := isbn.Clean(strings.TrimPrefix(r.URL.Path, "/api/records/"))

	record, exists := h.recordStore.Get(id)
	if !exists {
		h.writeError(w, "Record not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, record.Map())
	case http.MethodDelete:
		h.recordStore.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
