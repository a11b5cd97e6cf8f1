package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

var _ repository.AttendanceRepository = (*DB)(nil)

// Join inserts an attendance record with the capacity check inside the
// INSERT itself:
//
//	INSERT ... SELECT ... WHERE current_count < capacity
//
// A single statement executes atomically in SQLite, so two users racing for
// the last seat cannot both get in — one insert sees the seat taken and
// affects zero rows. This is the "atomic, capacity-checked insert" the rest
// of the system depends on; callers must treat this verdict as the truth,
// never a count they read earlier.
//
// Duplicate joins are rejected by the (session_id, user_id) primary key.
func (db *DB) Join(ctx context.Context, sessionID, userID string) error {
	// Friendly duplicate detection first. The primary key still catches
	// duplicates that race past this check.
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_attendees WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking attendance for session %s: %w", sessionID, err)
	}
	if exists > 0 {
		return apperror.DuplicateAttendance(sessionID, userID)
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO session_attendees (session_id, user_id, created_at)
		 SELECT s.id, ?, ?
		 FROM sessions s
		 WHERE s.id = ?
		   AND (SELECT COUNT(*) FROM session_attendees a WHERE a.session_id = s.id) < s.capacity`,
		userID,
		time.Now(),
		sessionID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint failed") {
			return apperror.DuplicateAttendance(sessionID, userID)
		}
		return fmt.Errorf("sqlite: joining session %s: %w", sessionID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the session doesn't exist or it is at capacity.
		var count int
		err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("sqlite: checking session %s: %w", sessionID, err)
		}
		if count == 0 {
			return apperror.NotFound("session", sessionID)
		}
		return apperror.CapacityExceeded(sessionID)
	}

	return nil
}

// Leave removes the attendance record if present. Removing a record that
// doesn't exist is not an error; the boolean tells the caller whether
// anything actually changed.
func (db *DB) Leave(ctx context.Context, sessionID, userID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM session_attendees WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: leaving session %s: %w", sessionID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListUserIDs returns the attendee user IDs for a session, oldest join first.
func (db *DB) ListUserIDs(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM session_attendees
		 WHERE session_id = ?
		 ORDER BY created_at ASC, user_id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing attendees for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning attendee row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating attendees: %w", err)
	}

	return ids, nil
}

// ListProfiles returns the attendee profiles for display composition,
// oldest join first.
func (db *DB) ListProfiles(ctx context.Context, sessionID string) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.avatar, u.location, u.bio, u.rating,
		        u.games_played, u.willing_to_host, u.max_travel_distance,
		        u.created_at, u.updated_at
		 FROM session_attendees a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.session_id = ?
		 ORDER BY a.created_at ASC, a.user_id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing attendee profiles for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.ID, &p.Email, &p.Name, &p.Avatar, &p.Location, &p.Bio, &p.Rating,
			&p.GamesPlayed, &p.WillingToHost, &p.MaxTravelDistance,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning attendee profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating attendee profiles: %w", err)
	}

	return profiles, nil
}

// Count returns the current attendee count for a session.
func (db *DB) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_attendees WHERE session_id = ?`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting attendees for session %s: %w", sessionID, err)
	}
	return count, nil
}
