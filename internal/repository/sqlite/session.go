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

// Compile-time check that *DB implements repository.SessionRepository.
var _ repository.SessionRepository = (*DB)(nil)

// Create inserts the session row and the host's attendance record in a
// single transaction. The original two-step create (insert session, then
// join as host) could fail between the writes and leave a session whose
// host was not an attendee; running both inside one transaction removes
// that partial state entirely.
func (db *DB) Create(ctx context.Context, session *model.Session) error {
	session.ID = xid.New().String()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning create session tx: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, game_id, host_id, description, start_time, end_time,
		                       location, address, capacity, skill_level, materials_provided,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.GameID,
		session.HostID,
		session.Description,
		session.StartTime,
		session.EndTime,
		session.Location,
		session.Address,
		session.Capacity,
		string(session.SkillLevel),
		session.MaterialsProvided,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO session_attendees (session_id, user_id, created_at)
		 VALUES (?, ?, ?)`,
		session.ID,
		session.HostID,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding host attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing create session tx: %w", err)
	}

	session.AttendeeIDs = []string{session.HostID}
	return nil
}

// GetByID retrieves a single session with its attendee IDs populated.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	var skill string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, game_id, host_id, description, start_time, end_time,
		        location, address, capacity, skill_level, materials_provided,
		        created_at, updated_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.GameID,
		&s.HostID,
		&s.Description,
		&s.StartTime,
		&s.EndTime,
		&s.Location,
		&s.Address,
		&s.Capacity,
		&skill,
		&s.MaterialsProvided,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	s.SkillLevel = model.SkillLevel(skill)

	s.AttendeeIDs, err = db.ListUserIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// List retrieves sessions matching the filter, ordered by start_time
// ascending with id as a deterministic tie-break. Attendee IDs come back in
// the same query via GROUP_CONCAT so listing N sessions is not N+1 queries.
//
// The status filter is NOT applied here: status is derived from the attendee
// count, so the service layer filters after derivation.
func (db *DB) List(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	query := `SELECT s.id, s.game_id, s.host_id, s.description, s.start_time, s.end_time,
	                 s.location, s.address, s.capacity, s.skill_level, s.materials_provided,
	                 s.created_at, s.updated_at,
	                 COALESCE(GROUP_CONCAT(a.user_id), '')
	          FROM sessions s
	          LEFT JOIN session_attendees a ON a.session_id = s.id`

	var conds []string
	var args []any

	if filter.GameID != "" {
		conds = append(conds, "s.game_id = ?")
		args = append(args, filter.GameID)
	}
	if filter.SkillLevel != "" {
		conds = append(conds, "s.skill_level = ?")
		args = append(args, string(filter.SkillLevel))
	}
	if filter.HostID != "" {
		conds = append(conds, "s.host_id = ?")
		args = append(args, filter.HostID)
	}
	if filter.AttendeeID != "" {
		conds = append(conds, "s.id IN (SELECT session_id FROM session_attendees WHERE user_id = ?)")
		args = append(args, filter.AttendeeID)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` GROUP BY s.id ORDER BY s.start_time ASC, s.id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		var skill, attendees string
		if err := rows.Scan(
			&s.ID, &s.GameID, &s.HostID, &s.Description, &s.StartTime, &s.EndTime,
			&s.Location, &s.Address, &s.Capacity, &skill, &s.MaterialsProvided,
			&s.CreatedAt, &s.UpdatedAt, &attendees,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session row: %w", err)
		}
		s.SkillLevel = model.SkillLevel(skill)
		if attendees != "" {
			s.AttendeeIDs = strings.Split(attendees, ",")
		} else {
			s.AttendeeIDs = []string{}
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sessions: %w", err)
	}

	return sessions, nil
}

// Update modifies an existing session. Host and game references are
// immutable after creation; only the describable fields change.
//
// The capacity write carries the same in-statement guard as Join: the
// UPDATE only applies while the new capacity still covers the current
// attendee count. A join landing between the caller's read and this write
// makes the edit miss, instead of stranding attendees beyond the limit.
func (db *DB) Update(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE sessions
		 SET description = ?, start_time = ?, end_time = ?, location = ?, address = ?,
		     capacity = ?, skill_level = ?, materials_provided = ?, updated_at = ?
		 WHERE id = ?
		   AND (SELECT COUNT(*) FROM session_attendees a WHERE a.session_id = sessions.id) <= ?`,
		session.Description,
		session.StartTime,
		session.EndTime,
		session.Location,
		session.Address,
		session.Capacity,
		string(session.SkillLevel),
		session.MaterialsProvided,
		session.UpdatedAt,
		session.ID,
		session.Capacity,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating session %s: %w", session.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the session doesn't exist or the new capacity is below the
		// current attendee count.
		var count int
		err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE id = ?`, session.ID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("sqlite: checking session %s: %w", session.ID, err)
		}
		if count == 0 {
			return apperror.NotFound("session", session.ID)
		}
		return apperror.ValidationFailed("capacity",
			"capacity cannot be reduced below the current attendee count")
	}

	return nil
}

// Delete removes a session. Attendance records and comments are removed by
// the ON DELETE CASCADE foreign keys — they are meaningless without the
// session they belong to.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("session", id)
	}

	return nil
}
