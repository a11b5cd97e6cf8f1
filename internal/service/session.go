// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate, enforce
// rules, and orchestrate; repositories read and write the database. Each
// service receives repository interfaces, so tests can inject in-memory
// mocks and the HTTP layer never touches SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/config"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// Validation constants.
const (
	MinCapacity          = 2
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
)

// SessionService owns the session lifecycle: creation, attendance,
// status derivation, and deletion.
//
// It holds no locks and no cached counts. Anything that must be atomic —
// the capacity-checked join, create-plus-host-attendance, cascade delete —
// is the repository's job; this layer treats the store's verdict as the
// only truth about capacity.
type SessionService struct {
	sessions   repository.SessionRepository
	attendance repository.AttendanceRepository
	games      repository.GameRepository
	users      repository.UserRepository
	hostLeave  config.HostLeavePolicy
	logger     *slog.Logger
}

// NewSessionService creates a SessionService with all dependencies injected.
func NewSessionService(
	sessions repository.SessionRepository,
	attendance repository.AttendanceRepository,
	games repository.GameRepository,
	users repository.UserRepository,
	hostLeave config.HostLeavePolicy,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		attendance: attendance,
		games:      games,
		users:      users,
		hostLeave:  hostLeave,
		logger:     logger,
	}
}

// SessionDraft carries the caller-supplied fields for creating a session.
type SessionDraft struct {
	GameID            string
	Description       string
	StartTime         time.Time
	EndTime           time.Time
	Location          string
	Address           string
	Capacity          int
	SkillLevel        model.SkillLevel
	MaterialsProvided bool
}

// SessionUpdate carries the editable fields for updating a session. Nil
// pointers mean "don't change". Host and game are immutable after creation.
type SessionUpdate struct {
	Description       *string
	StartTime         *time.Time
	EndTime           *time.Time
	Location          *string
	Address           *string
	Capacity          *int
	SkillLevel        *model.SkillLevel
	MaterialsProvided *bool
}

// Create validates a draft and persists it with the host as sole attendee.
//
// The returned session always has status open: capacity is at least 2 and
// only the host is attending. Session row and host attendance are written
// in one repository transaction, so a session can never exist without its
// host in the attendee set.
func (s *SessionService) Create(ctx context.Context, draft SessionDraft, hostID string) (*model.Session, error) {
	if hostID == "" {
		return nil, apperror.Unauthorized("must be logged in to create a session")
	}

	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	// The game must exist in the catalog; a dangling reference would break
	// every later read of the session.
	if _, err := s.games.GetGameByID(ctx, draft.GameID); err != nil {
		return nil, err
	}

	session := &model.Session{
		GameID:            draft.GameID,
		HostID:            hostID,
		Description:       strings.TrimSpace(draft.Description),
		StartTime:         draft.StartTime,
		EndTime:           draft.EndTime,
		Location:          strings.TrimSpace(draft.Location),
		Address:           strings.TrimSpace(draft.Address),
		Capacity:          draft.Capacity,
		SkillLevel:        draft.SkillLevel,
		MaterialsProvided: draft.MaterialsProvided,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("failed to create session",
			slog.String("hostID", hostID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("id", session.ID),
		slog.String("hostID", hostID),
		slog.String("gameID", session.GameID),
		slog.Int("capacity", session.Capacity),
	)

	return session, nil
}

func validateDraft(draft *SessionDraft) error {
	if draft.GameID == "" {
		return apperror.ValidationFailed("gameId", "game is required")
	}
	if draft.Capacity < MinCapacity {
		return apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity must be at least %d", MinCapacity))
	}
	if draft.StartTime.IsZero() || draft.EndTime.IsZero() {
		return apperror.ValidationFailed("startTime", "start and end time are required")
	}
	if !draft.EndTime.After(draft.StartTime) {
		return apperror.ValidationFailed("endTime", "end time must be after start time")
	}
	if len(draft.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if len(draft.Location) > MaxLocationLength {
		return apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}
	if draft.SkillLevel == "" {
		draft.SkillLevel = model.SkillAllLevels
	}
	if !draft.SkillLevel.Valid() {
		return apperror.ValidationFailed("skillLevel", "unknown skill level")
	}
	return nil
}

// Get returns the canonical session view: the session with its derived
// status, plus game, host, and attendee profiles for display.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "session ID is required")
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Game, err = s.games.GetGameByID(ctx, session.GameID); err != nil {
		return nil, fmt.Errorf("loading game for session %s: %w", id, err)
	}
	if session.Host, err = s.users.GetUserByID(ctx, session.HostID); err != nil {
		return nil, fmt.Errorf("loading host for session %s: %w", id, err)
	}
	if session.Attendees, err = s.attendance.ListProfiles(ctx, id); err != nil {
		return nil, fmt.Errorf("loading attendees for session %s: %w", id, err)
	}

	return session, nil
}

// List returns sessions matching the filter, ordered by start time
// ascending with id as tie-break.
//
// Status is derived per session after loading, never read from storage, so
// the status filter is applied here rather than in SQL. An empty status
// filter includes both open and full sessions.
func (s *SessionService) List(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	if filter.SkillLevel != "" && !filter.SkillLevel.Valid() {
		return nil, apperror.ValidationFailed("skillLevel", "unknown skill level")
	}
	if filter.Status != "" && filter.Status != model.StatusOpen && filter.Status != model.StatusFull {
		return nil, apperror.ValidationFailed("status", "status must be open or full")
	}

	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list sessions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	if filter.Status == "" {
		return sessions, nil
	}

	filtered := make([]model.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.Status() == filter.Status {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

// Update applies host-initiated edits to a session.
//
// Only the host may edit. Capacity can never be reduced below the current
// attendee count — that would strand attendees beyond the limit and break
// the count<=capacity invariant.
func (s *SessionService) Update(ctx context.Context, id string, update SessionUpdate, requesterID string) (*model.Session, error) {
	if requesterID == "" {
		return nil, apperror.Unauthorized("must be logged in to edit a session")
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.HostID != requesterID {
		return nil, apperror.Forbidden("only the host can edit this session")
	}

	if update.Description != nil {
		session.Description = strings.TrimSpace(*update.Description)
	}
	if update.StartTime != nil {
		session.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		session.EndTime = *update.EndTime
	}
	if update.Location != nil {
		session.Location = strings.TrimSpace(*update.Location)
	}
	if update.Address != nil {
		session.Address = strings.TrimSpace(*update.Address)
	}
	if update.Capacity != nil {
		session.Capacity = *update.Capacity
	}
	if update.SkillLevel != nil {
		session.SkillLevel = *update.SkillLevel
	}
	if update.MaterialsProvided != nil {
		session.MaterialsProvided = *update.MaterialsProvided
	}

	if !session.EndTime.After(session.StartTime) {
		return nil, apperror.ValidationFailed("endTime", "end time must be after start time")
	}
	if session.Capacity < MinCapacity {
		return nil, apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity must be at least %d", MinCapacity))
	}
	if !session.SkillLevel.Valid() {
		return nil, apperror.ValidationFailed("skillLevel", "unknown skill level")
	}
	if len(session.Description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if session.Capacity < len(session.AttendeeIDs) {
		// Friendly early rejection against the loaded attendee set. The
		// store re-checks the count inside the UPDATE itself, so a join
		// racing past this read still cannot strand attendees.
		return nil, apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity cannot be reduced below the current attendee count (%d)", len(session.AttendeeIDs)))
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			// Store verdicts (capacity guard, not-found) pass through.
			return nil, err
		}
		s.logger.Error("failed to update session",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating session: %w", err)
	}

	s.logger.Info("session updated", slog.String("id", id))
	return session, nil
}

// Join adds the user to the session's attendee set.
//
// The repository performs the capacity check and the duplicate check
// atomically; a count read here would be stale the moment two users race
// for the last seat, so none is used. Possible errors:
// ErrUnauthorized, ErrNotFound, ErrCapacityExceeded, ErrDuplicateAttendance.
func (s *SessionService) Join(ctx context.Context, sessionID, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("must be logged in to join a session")
	}

	if err := s.attendance.Join(ctx, sessionID, userID); err != nil {
		return err
	}

	s.logger.Info("user joined session",
		slog.String("sessionID", sessionID),
		slog.String("userID", userID),
	)
	return nil
}

// Leave removes the user from the session's attendee set.
//
// Leaving a session you are not attending is a deliberate no-op, matching
// the delete-by-filter semantics the original client relied on. A full
// session becomes open again the moment a seat frees — no state to update,
// since status is derived.
//
// The host is special-cased by policy: either the leave is rejected
// (disallow) or the whole session is cancelled (cancel). Silently removing
// the host would orphan the session and break the host-is-attendee
// invariant.
func (s *SessionService) Leave(ctx context.Context, sessionID, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("must be logged in to leave a session")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.HostID == userID {
		switch s.hostLeave {
		case config.HostLeaveCancel:
			s.logger.Info("host left own session, cancelling",
				slog.String("sessionID", sessionID),
				slog.String("hostID", userID),
			)
			return s.deleteSession(ctx, session)
		default:
			return apperror.Forbidden("the host cannot leave their own session; delete it instead")
		}
	}

	removed, err := s.attendance.Leave(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("leaving session: %w", err)
	}
	if removed {
		s.logger.Info("user left session",
			slog.String("sessionID", sessionID),
			slog.String("userID", userID),
		)
	}
	return nil
}

// Delete removes a session and everything hanging off it. Host only.
func (s *SessionService) Delete(ctx context.Context, sessionID, requesterID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("must be logged in to delete a session")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HostID != requesterID {
		return apperror.Forbidden("only the host can delete this session")
	}

	return s.deleteSession(ctx, session)
}

func (s *SessionService) deleteSession(ctx context.Context, session *model.Session) error {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}
	s.logger.Info("session deleted",
		slog.String("id", session.ID),
		slog.String("hostID", session.HostID),
	)
	return nil
}

// HostedBy lists the sessions a user hosts, soonest first.
func (s *SessionService) HostedBy(ctx context.Context, userID string) ([]model.Session, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.List(ctx, repository.SessionFilter{HostID: userID})
}

// AttendedBy lists the sessions a user attends but does not host.
func (s *SessionService) AttendedBy(ctx context.Context, userID string) ([]model.Session, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	sessions, err := s.List(ctx, repository.SessionFilter{AttendeeID: userID})
	if err != nil {
		return nil, err
	}

	attending := make([]model.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.HostID != userID {
			attending = append(attending, session)
		}
	}
	return attending, nil
}
