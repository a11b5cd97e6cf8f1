package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/boardnomore/internal/apperror"
)

func TestGameList_All(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	seedGame(t, store, "Wingspan", "strategy")
	seedGame(t, store, "Catan", "strategy", "trading")

	games, err := svc.List(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	// Catalog comes back sorted by name.
	if games[0].Name != "Catan" || games[1].Name != "Wingspan" {
		t.Errorf("order = [%q, %q], want name order", games[0].Name, games[1].Name)
	}
}

func TestGameList_Search(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	seedGame(t, store, "Catan")
	seedGame(t, store, "Wingspan")

	games, err := svc.List(context.Background(), "cat", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Catan" {
		t.Errorf("search %q matched %v, want just Catan", "cat", games)
	}
}

func TestGameList_Tags(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	seedGame(t, store, "Catan", "strategy", "trading")
	seedGame(t, store, "Wingspan", "strategy")

	games, err := svc.List(context.Background(), "", []string{"strategy", "trading"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Catan" {
		t.Errorf("tag filter matched %v, want just Catan", games)
	}
}

func TestGameGet(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	game := seedGame(t, store, "Catan")

	found, err := svc.Get(context.Background(), game.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found.Name != "Catan" {
		t.Errorf("Name = %q, want Catan", found.Name)
	}

	_, err = svc.Get(context.Background(), "no-such-game")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	_, err = svc.Get(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty ID error = %v, want ErrValidation", err)
	}
}
