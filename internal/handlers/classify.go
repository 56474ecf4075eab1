package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bookloader/bookloader/internal/classify"
)

// maxClassifyBody caps the size of a classify request body
const maxClassifyBody = 64 << 10

type ClassifyRequest struct {
	Categories []string `json:"categories"`
	Explain    bool     `json:"explain"`
}

type ClassifyResponse struct {
	Categories []string         `json:"categories"`
	Matches    []classify.Match `json:"matches,omitempty"`
}

func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxClassifyBody)

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, fmt.Sprintf("Request body over %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if limit := h.catalogingService.ClassifyWordLimit(); limit > 0 {
		if n := countWords(req.Categories); n > limit {
			h.writeError(w, fmt.Sprintf("Too many words: %d (limit %d)", n, limit), http.StatusRequestEntityTooLarge)
			return
		}
	}

	classifier := h.catalogingService.Classifier()
	resp := ClassifyResponse{}
	if req.Explain {
		resp.Matches = classifier.Explain(req.Categories)
		resp.Categories = make([]string, 0, len(resp.Matches))
		for _, m := range resp.Matches {
			resp.Categories = append(resp.Categories, m.Category)
		}
	} else {
		resp.Categories = classifier.Classify(req.Categories)
	}

	h.writeJSON(w, resp)
}

// countWords counts the words the classifier would split out of raw
func countWords(raw []string) int {
	n := 0
	for _, s := range raw {
		n += len(strings.Fields(strings.ReplaceAll(s, "--", " ")))
	}
	return n
}
