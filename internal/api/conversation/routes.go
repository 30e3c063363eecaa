package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", h.CreateConversation)
		r.Get("/{id}", h.GetConversation)
		r.Post("/{id}/prompt", h.SubmitPrompt)
		r.Post("/{id}/choices/toggle", h.ToggleChoice)
		r.Post("/{id}/submit", h.SubmitSelections)
		r.Post("/{id}/options/more", h.RequestMoreOptions)
		r.Post("/{id}/reset", h.Reset)
		r.Get("/{id}/concepts", h.ExportConcepts)
	})

	r.Get("/concepts", h.ListConcepts)
}
