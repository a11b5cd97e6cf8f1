package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	err := db.CreateUser(context.Background(), &model.Profile{
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Name:         "Alice Again",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	found, err := db.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != alice.ID {
		t.Errorf("ID = %q, want %q", found.ID, alice.ID)
	}

	_, err = db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser_LeavesCredentialsAlone(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	ctx := context.Background()

	alice.Bio = "catan veteran"
	alice.Email = "changed@example.com"        // must be ignored
	alice.PasswordHash = "tampered"            // must be ignored
	if err := db.UpdateUser(ctx, alice); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	loaded, err := db.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if loaded.Bio != "catan veteran" {
		t.Errorf("Bio = %q, want updated", loaded.Bio)
	}
	if loaded.Email != "alice@example.com" {
		t.Errorf("Email = %q, update must not touch email", loaded.Email)
	}
	if loaded.PasswordHash != "not-a-real-hash" {
		t.Errorf("PasswordHash changed, update must not touch credentials")
	}
}

func TestAvailability_ReplaceSemantics(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	ctx := context.Background()

	first := []model.AvailabilitySlot{
		{DayOfWeek: "monday", TimeSlot: "evening"},
		{DayOfWeek: "friday", TimeSlot: "evening"},
	}
	if err := db.SetAvailability(ctx, alice.ID, first); err != nil {
		t.Fatalf("SetAvailability() error = %v", err)
	}

	second := []model.AvailabilitySlot{{DayOfWeek: "saturday", TimeSlot: "morning"}}
	if err := db.SetAvailability(ctx, alice.ID, second); err != nil {
		t.Fatalf("SetAvailability() replace error = %v", err)
	}

	slots, err := db.GetAvailability(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if len(slots) != 1 || slots[0].DayOfWeek != "saturday" {
		t.Errorf("slots = %v, want just saturday morning", slots)
	}
}

func TestFavoriteGames(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	catan := createTestGame(t, db, "Catan")
	ctx := context.Background()

	if err := db.AddFavoriteGame(ctx, alice.ID, catan.ID); err != nil {
		t.Fatalf("AddFavoriteGame() error = %v", err)
	}

	err := db.AddFavoriteGame(ctx, alice.ID, catan.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate add error = %v, want ErrConflict", err)
	}

	games, err := db.ListFavoriteGames(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListFavoriteGames() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Catan" {
		t.Errorf("favorites = %v, want just Catan", games)
	}

	if err := db.RemoveFavoriteGame(ctx, alice.ID, catan.ID); err != nil {
		t.Fatalf("RemoveFavoriteGame() error = %v", err)
	}
	// Removing again is a no-op.
	if err := db.RemoveFavoriteGame(ctx, alice.ID, catan.ID); err != nil {
		t.Fatalf("second RemoveFavoriteGame() error = %v", err)
	}

	games, err = db.ListFavoriteGames(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListFavoriteGames() error = %v", err)
	}
	if len(games) != 0 {
		t.Errorf("favorites after remove = %v, want empty", games)
	}
}
