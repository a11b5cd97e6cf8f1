package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, name, avatar, location, bio, rating,
	games_played, willing_to_host, max_travel_distance, created_at, updated_at`

func scanProfile(scan func(...any) error) (*model.Profile, error) {
	var p model.Profile
	err := scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Name, &p.Avatar, &p.Location, &p.Bio,
		&p.Rating, &p.GamesPlayed, &p.WillingToHost, &p.MaxTravelDistance,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateUser inserts a new user. The UNIQUE constraint on email maps to
// ErrConflict so the service can report "already registered" cleanly.
func (db *DB) CreateUser(ctx context.Context, profile *model.Profile) error {
	profile.ID = xid.New().String()

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.Name,
		profile.Avatar,
		profile.Location,
		profile.Bio,
		profile.Rating,
		profile.GamesPlayed,
		profile.WillingToHost,
		profile.MaxTravelDistance,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", profile.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.Profile, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	p, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return p, nil
}

// GetUserByEmail retrieves a user by email, for login.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	p, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return p, nil
}

// UpdateUser saves profile changes. Email and password hash are managed by
// the auth flow and deliberately not touched here.
func (db *DB) UpdateUser(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, avatar = ?, location = ?, bio = ?, rating = ?,
		     games_played = ?, willing_to_host = ?, max_travel_distance = ?, updated_at = ?
		 WHERE id = ?`,
		profile.Name,
		profile.Avatar,
		profile.Location,
		profile.Bio,
		profile.Rating,
		profile.GamesPlayed,
		profile.WillingToHost,
		profile.MaxTravelDistance,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", profile.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", profile.ID)
	}

	return nil
}

// SetAvailability replaces the user's weekly availability with the given
// slots. Delete-then-insert inside a transaction, mirroring how the data is
// edited: the client always submits the full week.
func (db *DB) SetAvailability(ctx context.Context, userID string, slots []model.AvailabilitySlot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning availability tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_availability WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: clearing availability for user %s: %w", userID, err)
	}

	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_availability (user_id, day_of_week, time_slot) VALUES (?, ?, ?)`,
			userID, slot.DayOfWeek, slot.TimeSlot); err != nil {
			return fmt.Errorf("sqlite: inserting availability slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing availability tx: %w", err)
	}

	return nil
}

// GetAvailability returns the user's availability slots.
func (db *DB) GetAvailability(ctx context.Context, userID string) ([]model.AvailabilitySlot, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT day_of_week, time_slot FROM user_availability
		 WHERE user_id = ?
		 ORDER BY day_of_week ASC, time_slot ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing availability for user %s: %w", userID, err)
	}
	defer rows.Close()

	slots := []model.AvailabilitySlot{}
	for rows.Next() {
		var s model.AvailabilitySlot
		if err := rows.Scan(&s.DayOfWeek, &s.TimeSlot); err != nil {
			return nil, fmt.Errorf("sqlite: scanning availability row: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating availability: %w", err)
	}

	return slots, nil
}

// AddFavoriteGame marks a game as a favorite. Adding the same favorite
// twice maps to ErrConflict via the composite primary key.
func (db *DB) AddFavoriteGame(ctx context.Context, userID, gameID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_favorite_games (user_id, game_id, created_at) VALUES (?, ?, ?)`,
		userID, gameID, time.Now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint failed") {
			return apperror.Conflict("favorite", gameID)
		}
		return fmt.Errorf("sqlite: adding favorite game %s for user %s: %w", gameID, userID, err)
	}
	return nil
}

// RemoveFavoriteGame unmarks a favorite. Removing a non-favorite is a no-op,
// mirroring Leave on attendance.
func (db *DB) RemoveFavoriteGame(ctx context.Context, userID, gameID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_favorite_games WHERE user_id = ? AND game_id = ?`,
		userID, gameID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite game %s for user %s: %w", gameID, userID, err)
	}
	return nil
}

// ListFavoriteGames returns the user's favorite games, oldest favorite first.
func (db *DB) ListFavoriteGames(ctx context.Context, userID string) ([]model.Game, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id, g.name, g.min_players, g.max_players, g.tags, g.image, g.created_at
		 FROM user_favorite_games f
		 JOIN games g ON g.id = f.game_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at ASC, g.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorite games for user %s: %w", userID, err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite game row: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorite games: %w", err)
	}

	return games, nil
}
