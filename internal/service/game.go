package service

import (
	"context"
	"strings"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// GameService serves the read-only games catalog.
type GameService struct {
	games repository.GameRepository
}

// NewGameService creates a GameService.
func NewGameService(games repository.GameRepository) *GameService {
	return &GameService{games: games}
}

// List returns the catalog. When search is non-empty it filters by
// case-insensitive name substring; when tags are given, only games
// carrying every tag are returned. Search and tags are mutually
// exclusive; search wins when both are present.
func (s *GameService) List(ctx context.Context, search string, tags []string) ([]model.Game, error) {
	search = strings.TrimSpace(search)
	if search != "" {
		return s.games.SearchGames(ctx, search)
	}

	cleaned := tags[:0]
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) > 0 {
		return s.games.ListGamesByTags(ctx, cleaned)
	}

	return s.games.ListGames(ctx)
}

// Get returns one game by ID.
func (s *GameService) Get(ctx context.Context, id string) (*model.Game, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "game ID is required")
	}
	return s.games.GetGameByID(ctx, id)
}
