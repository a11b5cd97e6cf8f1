package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
	"github.com/sakif/boardnomore/internal/service"
)

// SessionHandler manages the session lifecycle endpoints: CRUD, the
// join/leave attendance operations, and the nested comment routes.
type SessionHandler struct {
	sessions *service.SessionService
	comments *service.CommentService
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(
	sessions *service.SessionService,
	comments *service.CommentService,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		comments: comments,
		logger:   logger,
	}
}

type createSessionRequest struct {
	GameID            string    `json:"gameId" validate:"required"`
	Description       string    `json:"description"`
	StartTime         time.Time `json:"startTime" validate:"required"`
	EndTime           time.Time `json:"endTime" validate:"required"`
	Location          string    `json:"location"`
	Address           string    `json:"address"`
	Capacity          int       `json:"capacity" validate:"required,min=2"`
	SkillLevel        string    `json:"skillLevel"`
	MaterialsProvided bool      `json:"materialsProvided"`
}

// updateSessionRequest uses pointers so "field absent" and "field set to
// zero value" are distinguishable. Host and game are immutable.
type updateSessionRequest struct {
	Description       *string    `json:"description"`
	StartTime         *time.Time `json:"startTime"`
	EndTime           *time.Time `json:"endTime"`
	Location          *string    `json:"location"`
	Address           *string    `json:"address"`
	Capacity          *int       `json:"capacity" validate:"omitempty,min=2"`
	SkillLevel        *string    `json:"skillLevel"`
	MaterialsProvided *bool      `json:"materialsProvided"`
}

type commentRequest struct {
	Text            string `json:"text" validate:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

// HandleCreate creates a session with the caller as host.
//
// HTTP: POST /api/sessions
// Auth: Required
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	session, err := h.sessions.Create(r.Context(), service.SessionDraft{
		GameID:            req.GameID,
		Description:       req.Description,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Location:          req.Location,
		Address:           req.Address,
		Capacity:          req.Capacity,
		SkillLevel:        model.SkillLevel(req.SkillLevel),
		MaterialsProvided: req.MaterialsProvided,
	}, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// HandleList returns sessions matching the query filters.
//
// HTTP: GET /api/sessions?gameId=&skillLevel=&status=&hostId=
// Auth: Optional — anonymous browsing is allowed.
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.SessionFilter{
		GameID:     q.Get("gameId"),
		SkillLevel: model.SkillLevel(q.Get("skillLevel")),
		Status:     model.SessionStatus(q.Get("status")),
		HostID:     q.Get("hostId"),
	}

	sessions, err := h.sessions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// HandleGet returns one session with game, host, and attendees populated.
//
// HTTP: GET /api/sessions/{id}
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleUpdate applies host edits to a session.
//
// HTTP: PUT /api/sessions/{id}
// Auth: Required (host only)
func (h *SessionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update := service.SessionUpdate{
		Description:       req.Description,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Location:          req.Location,
		Address:           req.Address,
		Capacity:          req.Capacity,
		MaterialsProvided: req.MaterialsProvided,
	}
	if req.SkillLevel != nil {
		level := model.SkillLevel(*req.SkillLevel)
		update.SkillLevel = &level
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	session, err := h.sessions.Update(r.Context(), r.PathValue("id"), update, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleDelete removes a session and everything attached to it.
//
// HTTP: DELETE /api/sessions/{id}
// Auth: Required (host only)
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.sessions.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleJoin adds the caller to the session's attendee set.
//
// HTTP: POST /api/sessions/{id}/join
// Auth: Required
//
// The updated session is returned so the client immediately sees the new
// attendee count and derived status.
func (h *SessionHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.sessions.Join(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleLeave removes the caller from the session's attendee set.
//
// HTTP: DELETE /api/sessions/{id}/leave
// Auth: Required
//
// Leaving a session you never joined succeeds with the unchanged session —
// the operation is idempotent.
func (h *SessionHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.sessions.Leave(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	// Under the cancel policy a host leave deletes the session, so the
	// re-read can legitimately come back not-found. Anything else is a
	// real failure, not a cancellation.
	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "session cancelled"})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleListComments returns a session's comments as a flat log.
//
// HTTP: GET /api/sessions/{id}/comments
func (h *SessionHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListBySession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandlePostComment adds a comment to a session.
//
// HTTP: POST /api/sessions/{id}/comments
// Auth: Required
func (h *SessionHandler) HandlePostComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	comment, err := h.comments.Post(r.Context(), r.PathValue("id"), userID, req.Text, req.ParentCommentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
