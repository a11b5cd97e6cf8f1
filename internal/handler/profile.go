package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/service"
)

// ProfileHandler serves user profiles, availability, favorites, and the
// per-user session listings.
type ProfileHandler struct {
	profiles *service.ProfileService
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(
	profiles *service.ProfileService,
	sessions *service.SessionService,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		sessions: sessions,
		logger:   logger,
	}
}

type updateProfileRequest struct {
	Name              *string `json:"name"`
	Avatar            *string `json:"avatar"`
	Location          *string `json:"location"`
	Bio               *string `json:"bio"`
	WillingToHost     *bool   `json:"willingToHost"`
	MaxTravelDistance *int    `json:"maxTravelDistance" validate:"omitempty,min=0"`
}

type availabilityRequest struct {
	Slots []availabilitySlot `json:"slots" validate:"required,dive"`
}

type availabilitySlot struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	TimeSlot  string `json:"timeSlot" validate:"required"`
}

// HandleGet returns a user's public profile with favorites and availability.
//
// HTTP: GET /api/users/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate applies profile edits. Owner only.
//
// HTTP: PUT /api/users/{id}
// Auth: Required
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	profile, err := h.profiles.Update(r.Context(), r.PathValue("id"), service.ProfileUpdate{
		Name:              req.Name,
		Avatar:            req.Avatar,
		Location:          req.Location,
		Bio:               req.Bio,
		WillingToHost:     req.WillingToHost,
		MaxTravelDistance: req.MaxTravelDistance,
	}, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleSetAvailability replaces the user's weekly availability. Owner only.
//
// HTTP: PUT /api/users/{id}/availability
// Auth: Required
func (h *ProfileHandler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	slots := make([]model.AvailabilitySlot, len(req.Slots))
	for i, s := range req.Slots {
		slots[i] = model.AvailabilitySlot{DayOfWeek: s.DayOfWeek, TimeSlot: s.TimeSlot}
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.profiles.SetAvailability(r.Context(), r.PathValue("id"), slots, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

// HandleGetAvailability returns the user's weekly availability on its own,
// for clients that don't need the full profile.
//
// HTTP: GET /api/users/{id}/availability
func (h *ProfileHandler) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	slots := profile.Availability
	if slots == nil {
		slots = []model.AvailabilitySlot{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

// HandleAddFavorite marks a game as a favorite. Owner only.
//
// HTTP: POST /api/users/{id}/favorites/{gameId}
// Auth: Required
func (h *ProfileHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	err := h.profiles.AddFavoriteGame(r.Context(), r.PathValue("id"), r.PathValue("gameId"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFavorite unmarks a favorite. Owner only, idempotent.
//
// HTTP: DELETE /api/users/{id}/favorites/{gameId}
// Auth: Required
func (h *ProfileHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	err := h.profiles.RemoveFavoriteGame(r.Context(), r.PathValue("id"), r.PathValue("gameId"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHostedSessions lists the sessions a user hosts.
//
// HTTP: GET /api/users/{id}/sessions/hosted
func (h *ProfileHandler) HandleHostedSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.HostedBy(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// HandleAttendingSessions lists the sessions a user attends but does not host.
//
// HTTP: GET /api/users/{id}/sessions/attending
func (h *ProfileHandler) HandleAttendingSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.AttendedBy(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
