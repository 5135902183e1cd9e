package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers watchlist routes with the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleGetWatchlist)
		r.Post("/", h.HandleAdd)
		r.Post("/refresh", h.HandleRefresh)

		r.Route("/{symbol}", func(r chi.Router) {
			r.Delete("/", h.HandleRemove)
			r.Get("/news", h.HandleGetNews)
			r.Post("/swipe", h.HandleSwipe)
			r.Get("/summary", h.HandleGetSummary)
			r.Post("/summary", h.HandleGenerateSummary)
		})
	})

	r.Route("/favorite", func(r chi.Router) {
		r.Put("/", h.HandleSetFavorite)
		r.Delete("/", h.HandleClearFavorite)
	})
}
