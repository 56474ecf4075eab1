package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bookloader/bookloader/internal/cataloging"
	"github.com/bookloader/bookloader/internal/storage"
)

type Handler struct {
	recordStore       *storage.RecordStore
	catalogingService *cataloging.Service
}

func New(service *cataloging.Service) *Handler {
	return &Handler{
		recordStore:       storage.New(),
		catalogingService: service,
	}
}

// Routes registers every API route on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/lookup", h.HandleLookup)
	mux.HandleFunc("/api/records", h.HandleRecords)
	mux.HandleFunc("/api/records/", h.HandleRecordDetail)
	mux.HandleFunc("/api/classify", h.HandleClassify)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
