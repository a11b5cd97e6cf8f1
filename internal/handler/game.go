package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/boardnomore/internal/service"
)

// GameHandler serves the read-only games catalog.
type GameHandler struct {
	games  *service.GameService
	logger *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(games *service.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

// HandleList returns the catalog, optionally filtered.
//
// HTTP: GET /api/games?search=catan
//
//	GET /api/games?tags=strategy,trading
func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tags []string
	if raw := q.Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	games, err := h.games.List(r.Context(), q.Get("search"), tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, games)
}

// HandleGet returns one game by ID.
//
// HTTP: GET /api/games/{id}
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}
