package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

// Create inserts a new comment. parent_comment_id is nullable — a NULL
// means a top-level comment rather than a reply.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	var parent sql.NullString
	if comment.ParentCommentID != "" {
		parent = sql.NullString{String: comment.ParentCommentID, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, session_id, user_id, text, parent_comment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.SessionID,
		comment.UserID,
		comment.Text,
		parent,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// GetCommentByID retrieves a single comment.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	var parent sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, text, parent_comment_id, created_at, updated_at
		 FROM comments
		 WHERE id = ?`,
		id,
	).Scan(
		&c.ID,
		&c.SessionID,
		&c.UserID,
		&c.Text,
		&parent,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	if parent.Valid {
		c.ParentCommentID = parent.String
	}

	return &c, nil
}

// ListBySession returns a session's comments as a flat log, oldest first,
// with the author profile joined in for display.
func (db *DB) ListBySession(ctx context.Context, sessionID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.session_id, c.user_id, c.text, c.parent_comment_id,
		        c.created_at, c.updated_at,
		        u.id, u.email, u.name, u.avatar, u.location, u.bio, u.rating,
		        u.games_played, u.willing_to_host, u.max_travel_distance,
		        u.created_at, u.updated_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.session_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var u model.Profile
		var parent sql.NullString
		if err := rows.Scan(
			&c.ID, &c.SessionID, &c.UserID, &c.Text, &parent,
			&c.CreatedAt, &c.UpdatedAt,
			&u.ID, &u.Email, &u.Name, &u.Avatar, &u.Location, &u.Bio, &u.Rating,
			&u.GamesPlayed, &u.WillingToHost, &u.MaxTravelDistance,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		if parent.Valid {
			c.ParentCommentID = parent.String
		}
		c.Author = &u
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// UpdateComment modifies a comment's text.
func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET text = ?, updated_at = ? WHERE id = ?`,
		comment.Text,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}

	return nil
}

// DeleteComment removes a comment by ID.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
