package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

var _ repository.GameRepository = (*DB)(nil)

// Tags are stored as a JSON array in a TEXT column. SQLite has no native
// array type, and the catalog is small read-mostly reference data, so a
// join table for tags would be overkill.

func scanGame(scan func(...any) error) (*model.Game, error) {
	var g model.Game
	var tags string
	if err := scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &tags, &g.Image, &g.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &g.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags for game %s: %w", g.ID, err)
	}
	return &g, nil
}

// ListGames returns the whole catalog ordered by name.
func (db *DB) ListGames(ctx context.Context) ([]model.Game, error) {
	return db.queryGames(ctx,
		`SELECT id, name, min_players, max_players, tags, image, created_at
		 FROM games ORDER BY name ASC`)
}

// GetGameByID retrieves a single game from the catalog.
func (db *DB) GetGameByID(ctx context.Context, id string) (*model.Game, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, min_players, max_players, tags, image, created_at
		 FROM games WHERE id = ?`,
		id,
	)
	g, err := scanGame(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %s: %w", id, err)
	}
	return g, nil
}

// SearchGames finds games whose name contains the term, case-insensitively.
func (db *DB) SearchGames(ctx context.Context, term string) ([]model.Game, error) {
	return db.queryGames(ctx,
		`SELECT id, name, min_players, max_players, tags, image, created_at
		 FROM games WHERE name LIKE ? COLLATE NOCASE ORDER BY name ASC`,
		"%"+term+"%")
}

// ListGamesByTags returns games carrying every one of the given tags.
// The tags column holds a JSON array, so this walks it with json_each and
// counts how many of the requested tags each game matches.
func (db *DB) ListGamesByTags(ctx context.Context, tags []string) ([]model.Game, error) {
	if len(tags) == 0 {
		return []model.Game{}, nil
	}

	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding tag filter: %w", err)
	}

	return db.queryGames(ctx,
		`SELECT g.id, g.name, g.min_players, g.max_players, g.tags, g.image, g.created_at
		 FROM games g
		 WHERE (SELECT COUNT(DISTINCT gt.value)
		        FROM json_each(g.tags) gt
		        WHERE gt.value IN (SELECT value FROM json_each(?))) = ?
		 ORDER BY g.name ASC`,
		string(encoded), len(tags))
}

func (db *DB) queryGames(ctx context.Context, query string, args ...any) ([]model.Game, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}

	return games, nil
}

// InsertGame adds a game to the catalog. The API exposes no route for this —
// the catalog is maintained out of band — but seeding and tests need it.
func (db *DB) InsertGame(ctx context.Context, game *model.Game) error {
	if game.ID == "" {
		game.ID = xid.New().String()
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now()
	}

	tags := game.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO games (id, name, min_players, max_players, tags, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.Name,
		game.MinPlayers,
		game.MaxPlayers,
		string(encoded),
		game.Image,
		game.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting game %s: %w", game.ID, err)
	}

	return nil
}
