package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sharpchat/server/internal/agent/model"
	errx "github.com/sharpchat/server/internal/core/error"
)

// ChatService is the slice of the routing core the HTTP surface needs.
type ChatService interface {
	Process(ctx context.Context, in model.QueryInput) *model.QueryResult
	ResetSession(ctx context.Context, threadID string) error
	Session(ctx context.Context, threadID string) (*model.ConversationState, error)
}

// ChatHandler exposes the routing core over HTTP.
type ChatHandler struct {
	agent ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{agent: svc}
}

// Chat handles POST /api/chat. The routing core guarantees an answer; a
// malformed request is the only error path.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in model.QueryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errx.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(in.ThreadID) == "" || strings.TrimSpace(in.BusinessID) == "" {
		writeError(w, errx.New(nil, http.StatusBadRequest, "thread_id and business_id are required"))
		return
	}

	result := h.agent.Process(r.Context(), in)
	writeJSON(w, http.StatusOK, result)
}

// sessionView is the debug projection of a stored conversation.
type sessionView struct {
	ThreadID         string              `json:"thread_id"`
	BusinessID       string              `json:"business_id"`
	BusinessName     string              `json:"business_name"`
	MessageCount     int                 `json:"message_count"`
	UserEmail        string              `json:"user_email,omitempty"`
	UserPhone        string              `json:"user_phone,omitempty"`
	PreferredContact model.ContactMethod `json:"preferred_contact,omitempty"`
	Route            model.Route         `json:"route,omitempty"`
	EmailSent        bool                `json:"email_sent"`
}

// Session handles GET /api/chat/session/{threadID}. An unseen thread reports
// a fresh empty state rather than 404; the store has no not-found.
func (h *ChatHandler) Session(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	state, err := h.agent.Session(r.Context(), threadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{
		ThreadID:         threadID,
		BusinessID:       state.BusinessID,
		BusinessName:     state.BusinessName,
		MessageCount:     len(state.Messages),
		UserEmail:        state.UserEmail,
		UserPhone:        state.UserPhone,
		PreferredContact: state.PreferredContact,
		Route:            state.Route,
		EmailSent:        state.EmailSent,
	})
}

// ResetSession handles DELETE /api/chat/session/{threadID}.
func (h *ChatHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	if err := h.agent.ResetSession(r.Context(), threadID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "thread_id": threadID})
}
