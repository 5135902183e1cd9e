// Package handlers provides HTTP handlers for the widget.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/aristath/tickertock/internal/modules/widget"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

// SnapshotLoader reads the persisted snapshot. The widget never triggers fetches.
type SnapshotLoader interface {
	Load() (*state.AppState, bool)
}

// Handler serves the widget view
type Handler struct {
	store SnapshotLoader
	log   zerolog.Logger
}

// NewHandler creates a new widget handler
func NewHandler(store SnapshotLoader, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "widget").Logger(),
	}
}

// RegisterRoutes registers widget routes with the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget", h.HandleGetWidget)
}

// HandleGetWidget handles GET /api/widget
// Responds with MessagePack when the client asks for it, JSON otherwise
func (h *Handler) HandleGetWidget(w http.ResponseWriter, r *http.Request) {
	snap, _ := h.store.Load()
	view := widget.Build(snap)

	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		data, err := msgpack.Marshal(view)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode widget view")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
