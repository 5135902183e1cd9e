// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/tickertock/internal/clients/groq"
	"github.com/aristath/tickertock/internal/domain"
	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/aristath/tickertock/internal/modules/watchlist"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Service is the watchlist surface the handlers need
type Service interface {
	Snapshot() *state.AppState
	MaxSize() int
	Add(ctx context.Context, symbol string) (domain.Quote, []domain.NewsItem, error)
	Remove(symbol string) error
	Refresh(ctx context.Context) ([]domain.Quote, error)
	Feed(symbol string) (watchlist.Feed, error)
	Swipe(symbol string, direction watchlist.SwipeDirection) (watchlist.Feed, error)
	SetFavorite(symbol string) error
	ClearFavorite()
	GenerateSummary(ctx context.Context, symbol string) (string, error)
	Summary(symbol string) (string, error)
}

// Handler handles watchlist HTTP requests
type Handler struct {
	service Service
	log     zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(service Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "watchlist").Logger(),
	}
}

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

type swipeRequest struct {
	Direction watchlist.SwipeDirection `json:"direction"`
}

type summaryResponse struct {
	Symbol string      `json:"symbol"`
	Text   string      `json:"text"`
	Digest groq.Digest `json:"digest"`
}

// HandleGetWatchlist handles GET /api/watchlist
func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()

	quotes := make([]domain.Quote, 0, len(snap.Watchlist))
	for _, symbol := range snap.Watchlist {
		if q, ok := snap.Quotes[symbol]; ok {
			quotes = append(quotes, q)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbols":  snap.Watchlist,
			"quotes":   quotes,
			"favorite": snap.FavoriteSymbol,
			"max_size": h.service.MaxSize(),
		},
		"metadata": metadata(),
	})
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, watchlist.Message{Kind: watchlist.KindInvalid, Text: "Invalid request body"})
		return
	}

	quote, news, err := h.service.Add(r.Context(), req.Symbol)
	if err != nil {
		h.fail(w, err, watchlist.OpAdd)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"quote": quote,
			"news":  news,
		},
		"metadata": metadata(),
	})
}

// HandleRemove handles DELETE /api/watchlist/{symbol}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(chi.URLParam(r, "symbol")); err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh handles POST /api/watchlist/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.Refresh(r.Context())
	if err != nil {
		h.fail(w, err, watchlist.OpRefresh)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     map[string]interface{}{"quotes": quotes},
		"metadata": metadata(),
	})
}

// HandleGetNews handles GET /api/watchlist/{symbol}/news
func (h *Handler) HandleGetNews(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Feed(chi.URLParam(r, "symbol"))
	if err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     feed,
		"metadata": metadata(),
	})
}

// HandleSwipe handles POST /api/watchlist/{symbol}/swipe
func (h *Handler) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, watchlist.Message{Kind: watchlist.KindInvalid, Text: "Invalid request body"})
		return
	}

	feed, err := h.service.Swipe(chi.URLParam(r, "symbol"), req.Direction)
	if err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     feed,
		"metadata": metadata(),
	})
}

// HandleGenerateSummary handles POST /api/watchlist/{symbol}/summary
func (h *Handler) HandleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	symbol, err := watchlist.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		h.fail(w, err, watchlist.OpSummary)
		return
	}

	text, err := h.service.GenerateSummary(r.Context(), symbol)
	if err != nil {
		h.fail(w, err, watchlist.OpSummary)
		return
	}

	h.writeSummary(w, http.StatusCreated, symbol, text)
}

// HandleGetSummary handles GET /api/watchlist/{symbol}/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	symbol, err := watchlist.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}

	text, err := h.service.Summary(symbol)
	if err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}

	h.writeSummary(w, http.StatusOK, symbol, text)
}

// HandleSetFavorite handles PUT /api/favorite
func (h *Handler) HandleSetFavorite(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, watchlist.Message{Kind: watchlist.KindInvalid, Text: "Invalid request body"})
		return
	}

	if err := h.service.SetFavorite(req.Symbol); err != nil {
		h.fail(w, err, watchlist.OpOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearFavorite handles DELETE /api/favorite
func (h *Handler) HandleClearFavorite(w http.ResponseWriter, r *http.Request) {
	h.service.ClearFavorite()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSummary(w http.ResponseWriter, status int, symbol, text string) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": summaryResponse{
			Symbol: symbol,
			Text:   text,
			Digest: groq.ParseDigest(text),
		},
		"metadata": metadata(),
	})
}

// fail logs err and writes its user-facing message
func (h *Handler) fail(w http.ResponseWriter, err error, op watchlist.Operation) {
	msg := watchlist.Classify(err, op)
	if msg.Kind == watchlist.KindUpstream || msg.Kind == watchlist.KindRateLimited {
		h.log.Warn().Err(err).Str("op", string(op)).Msg("Request failed upstream")
	}
	h.writeError(w, msg)
}

func (h *Handler) writeError(w http.ResponseWriter, msg watchlist.Message) {
	h.writeJSON(w, statusFor(msg.Kind), map[string]interface{}{
		"error":    msg,
		"metadata": metadata(),
	})
}

func statusFor(kind watchlist.Kind) int {
	switch kind {
	case watchlist.KindRateLimited:
		return http.StatusTooManyRequests
	case watchlist.KindNotFound:
		return http.StatusNotFound
	case watchlist.KindConflict:
		return http.StatusConflict
	case watchlist.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
