package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/boardnomore/internal/apperror"
)

func TestListGames_SortedByName(t *testing.T) {
	db := newTestDB(t)
	createTestGame(t, db, "Wingspan")
	createTestGame(t, db, "Azul")
	createTestGame(t, db, "Catan")

	games, err := db.ListGames(context.Background())
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games, want 3", len(games))
	}
	want := []string{"Azul", "Catan", "Wingspan"}
	for i, name := range want {
		if games[i].Name != name {
			t.Errorf("games[%d].Name = %q, want %q", i, games[i].Name, name)
		}
	}
}

func TestGetGameByID(t *testing.T) {
	db := newTestDB(t)
	catan := createTestGame(t, db, "Catan", "strategy", "trading")

	game, err := db.GetGameByID(context.Background(), catan.ID)
	if err != nil {
		t.Fatalf("GetGameByID() error = %v", err)
	}
	if game.Name != "Catan" {
		t.Errorf("Name = %q, want Catan", game.Name)
	}
	if len(game.Tags) != 2 || game.Tags[0] != "strategy" {
		t.Errorf("Tags = %v, want round-tripped [strategy trading]", game.Tags)
	}

	_, err = db.GetGameByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSearchGames_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	createTestGame(t, db, "Catan")
	createTestGame(t, db, "Wingspan")

	games, err := db.SearchGames(context.Background(), "CAT")
	if err != nil {
		t.Fatalf("SearchGames() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Catan" {
		t.Errorf("SearchGames(CAT) = %v, want just Catan", games)
	}
}

func TestListGamesByTags_RequiresAllTags(t *testing.T) {
	db := newTestDB(t)
	createTestGame(t, db, "Catan", "strategy", "trading")
	createTestGame(t, db, "Wingspan", "strategy")

	games, err := db.ListGamesByTags(context.Background(), []string{"strategy", "trading"})
	if err != nil {
		t.Fatalf("ListGamesByTags() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Catan" {
		t.Errorf("ListGamesByTags() = %v, want just Catan", games)
	}

	games, err = db.ListGamesByTags(context.Background(), []string{"strategy"})
	if err != nil {
		t.Fatalf("ListGamesByTags() error = %v", err)
	}
	if len(games) != 2 {
		t.Errorf("ListGamesByTags(strategy) returned %d games, want 2", len(games))
	}
}
