package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"github.com/Alp4ka/quizhub/internal/models"
)

type analyticsErrorRequest struct {
	Type      string          `json:"type"`
	URL       string          `json:"url"`
	UserAgent string          `json:"user_agent"`
	Body      json.RawMessage `json:"body"`
}

// handleAnalyticsError stores a client side error report. The body is kept
// as the client sent it.
func (h *Handler) handleAnalyticsError(w http.ResponseWriter, r *http.Request) {
	var req analyticsErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("invalid JSON: %v", err))
		return
	}

	if strings.TrimSpace(req.Type) == "" {
		writeError(w, badRequest("type is required"))
		return
	}

	body := datatypes.JSON(req.Body)
	if len(body) == 0 || string(body) == "null" {
		body = datatypes.JSON("{}")
	}

	entry := &models.AnalyticsError{
		ID:        models.NewID(models.TypeAnalyticsError),
		Type:      req.Type,
		URL:       req.URL,
		UserAgent: req.UserAgent,
		Body:      body,
	}
	if err := h.recorder.Create(r.Context(), h.db, entry); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
