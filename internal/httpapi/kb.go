package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharpchat/server/internal/business"
	"github.com/sharpchat/server/internal/kb"
)

// KBHandler exposes the knowledge sync engine over HTTP.
type KBHandler struct {
	engine *kb.Engine
}

func NewKBHandler(engine *kb.Engine) *KBHandler {
	return &KBHandler{engine: engine}
}

// syncRequest optionally narrows a full sync pass. An empty body syncs
// everything.
type syncRequest struct {
	BusinessID string `json:"business_id,omitempty"`
	Category   string `json:"category,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Sync handles POST /api/kb/sync.
func (h *KBHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, err)
		return
	}

	result, err := h.engine.Sync(r.Context(), business.Filter{
		BusinessID: req.BusinessID,
		Category:   req.Category,
		Limit:      req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SyncBusiness handles POST /api/kb/business/{businessID}/sync. A missing
// business surfaces as the repository's 404.
func (h *KBHandler) SyncBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	result, err := h.engine.SyncBusiness(r.Context(), businessID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteBusiness handles DELETE /api/kb/business/{businessID}.
func (h *KBHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	if err := h.engine.DeleteBusiness(r.Context(), businessID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "business_id": businessID})
}

// Stats handles GET /api/kb/stats.
func (h *KBHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
