// Package httpapi wires the HTTP surface: chat intake, knowledge sync
// management, and the WhatsApp webhook.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter assembles the chi router over the three handler groups.
func NewRouter(chat *ChatHandler, kbh *KBHandler, wa *WhatsAppHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chat.Chat)
		r.Get("/chat/session/{threadID}", chat.Session)
		r.Delete("/chat/session/{threadID}", chat.ResetSession)

		r.Route("/kb", func(r chi.Router) {
			r.Post("/sync", kbh.Sync)
			r.Get("/stats", kbh.Stats)
			r.Post("/business/{businessID}/sync", kbh.SyncBusiness)
			r.Delete("/business/{businessID}", kbh.DeleteBusiness)
		})
	})

	r.Post("/whatsapp/webhook", wa.Webhook)
	r.Get("/whatsapp/session/{number}", wa.Session)
	r.Post("/whatsapp/session/{number}/reset", wa.Reset)

	return r
}
