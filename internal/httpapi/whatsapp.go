package httpapi

import (
	"encoding/xml"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharpchat/server/internal/whatsapp"
	logx "github.com/sharpchat/server/pkg/logger"
)

// WhatsAppHandler adapts Twilio's form-encoded webhook to the bootstrap
// handler and replies with TwiML.
type WhatsAppHandler struct {
	handler *whatsapp.Handler
}

func NewWhatsAppHandler(h *whatsapp.Handler) *WhatsAppHandler {
	return &WhatsAppHandler{handler: h}
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// Webhook handles POST /whatsapp/webhook. Twilio retries non-200 responses,
// so every path answers 200 with a message body.
func (h *WhatsAppHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logx.Error().Err(err).Msg("failed to parse webhook form")
		h.respond(w, "Sorry, something went wrong. Please try again.")
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" {
		h.respond(w, "Sorry, something went wrong. Please try again.")
		return
	}

	reply := h.handler.Handle(r.Context(), from, body)
	h.respond(w, reply)
}

// Session handles GET /whatsapp/session/{number}. An unseen sender reports a
// fresh INITIAL session.
func (h *WhatsAppHandler) Session(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	sess, err := h.handler.Session(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Reset handles POST /whatsapp/session/{number}/reset: drops the bootstrap
// session and its chat thread.
func (h *WhatsAppHandler) Reset(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	if err := h.handler.EndSession(r.Context(), number); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "number": number})
}

func (h *WhatsAppHandler) respond(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)

	out, err := xml.Marshal(twiml{Message: message})
	if err != nil {
		logx.Error().Err(err).Msg("failed to marshal twiml")
		return
	}
	w.Write([]byte(xml.Header))
	w.Write(out)
}
