// Package repository defines the persistence interfaces consumed by the
// service layer. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/boardnomore/internal/model"
)

// SessionFilter narrows a session listing. Zero values mean "no filter".
type SessionFilter struct {
	GameID     string
	SkillLevel model.SkillLevel
	Status     model.SessionStatus // derived after load; "" includes open and full
	HostID     string
	AttendeeID string
}

type SessionRepository interface {
	// Create persists the session and its host attendance record atomically.
	// On success the session has an ID, timestamps, and the host as sole attendee.
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	// List returns sessions ordered by start_time ascending (id as tie-break),
	// each with AttendeeIDs populated.
	List(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	// Delete removes the session; attendance and comments cascade with it.
	Delete(ctx context.Context, id string) error
}

// AttendanceRepository owns the attendee set of a session. Join and Leave
// are the only mutations, and Join is the atomic capacity guard the rest of
// the system relies on.
type AttendanceRepository interface {
	// Join inserts an attendance record iff the session is below capacity
	// and the user is not already attending. The store is the authority:
	// callers must treat its verdict, not a prior count, as truth.
	// Returns ErrCapacityExceeded or ErrDuplicateAttendance accordingly.
	Join(ctx context.Context, sessionID, userID string) error
	// Leave removes the attendance record if present. The boolean reports
	// whether a record was actually removed.
	Leave(ctx context.Context, sessionID, userID string) (bool, error)
	ListUserIDs(ctx context.Context, sessionID string) ([]string, error)
	ListProfiles(ctx context.Context, sessionID string) ([]model.Profile, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

// Method names are prefixed (CreateComment, GetUserByID, …) because the
// sqlite.DB type implements every repository interface on one receiver.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListBySession returns comments ordered by created_at ascending, each
	// with Author populated.
	ListBySession(ctx context.Context, sessionID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// GameRepository is read-only: the catalog is maintained out of band.
type GameRepository interface {
	ListGames(ctx context.Context) ([]model.Game, error)
	GetGameByID(ctx context.Context, id string) (*model.Game, error)
	SearchGames(ctx context.Context, term string) ([]model.Game, error)
	ListGamesByTags(ctx context.Context, tags []string) ([]model.Game, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, profile *model.Profile) error
	GetUserByID(ctx context.Context, id string) (*model.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (*model.Profile, error)
	UpdateUser(ctx context.Context, profile *model.Profile) error
	SetAvailability(ctx context.Context, userID string, slots []model.AvailabilitySlot) error
	GetAvailability(ctx context.Context, userID string) ([]model.AvailabilitySlot, error)
	AddFavoriteGame(ctx context.Context, userID, gameID string) error
	RemoveFavoriteGame(ctx context.Context, userID, gameID string) error
	ListFavoriteGames(ctx context.Context, userID string) ([]model.Game, error)
}
