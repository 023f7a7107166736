package api

import (
	"net/http"

	"buildcare/internal/auth"
	"buildcare/internal/db"
	"buildcare/internal/pubsub"
	"buildcare/internal/service"
	"buildcare/internal/session"
	"buildcare/internal/ws"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Dependencies struct {
	DB       *db.Pool
	Bus      *pubsub.Bus
	Hub      *ws.Hub
	Log      *zap.Logger
	Sessions *session.Store
	Leads    *service.LeadService
	Catalog  *service.CatalogService
	JWT      *auth.JWTConfig
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))

	// Public lead capture
	r.Post("/leads/inquiries", d.submitInquiry)
	r.Post("/leads/contacts", d.submitContact)
	r.Post("/leads/exit-intents", d.submitExitIntent)

	// Public service catalog
	r.Get("/services", d.listServices)
	r.Get("/services/{slug}", d.getService)

	// Chat widget (HTTP fallback; the WebSocket path is primary)
	r.Post("/chat/sessions", d.openChatSession)
	r.Get("/chat/sessions/{id}", d.getChatSession)
	r.Post("/chat/sessions/{id}/messages", d.postChatMessage)
	r.Post("/chat/sessions/{id}/select", d.selectChatOption)
	r.Post("/chat/sessions/{id}/reset", d.resetChatSession)

	// Admin dashboard
	r.Group(func(r chi.Router) {
		r.Use(d.JWT.RequireAdmin)

		r.Get("/admin/leads/{kind}", d.listLeads)
		r.Post("/admin/leads/{kind}/{id}/markRead", d.markLeadRead)
		r.Post("/admin/leads/{kind}/{id}/snooze", d.snoozeLead)
		r.Delete("/admin/leads/{kind}/{id}", d.deleteLead)
		r.Put("/admin/services/{slug}", d.upsertService)
	})

	// WebSocket endpoint
	r.Get("/ws", d.wsHandler)

	return r
}
