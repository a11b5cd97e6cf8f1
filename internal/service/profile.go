package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// MaxBioLength bounds the profile bio.
const MaxBioLength = 1000

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

var validTimeSlots = map[string]bool{
	"morning": true, "afternoon": true, "evening": true,
}

// ProfileService manages user profiles, weekly availability, and
// favorite games. All writes are owner-only; reads are public.
type ProfileService struct {
	users  repository.UserRepository
	games  repository.GameRepository
	logger *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	users repository.UserRepository,
	games repository.GameRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:  users,
		games:  games,
		logger: logger,
	}
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "don't change". Email and password are managed by the auth flow.
type ProfileUpdate struct {
	Name              *string
	Avatar            *string
	Location          *string
	Bio               *string
	WillingToHost     *bool
	MaxTravelDistance *int
}

// Get returns a full profile view: the base record plus favorite games
// and weekly availability.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.FavoriteGames, err = s.users.ListFavoriteGames(ctx, userID); err != nil {
		return nil, fmt.Errorf("loading favorites for user %s: %w", userID, err)
	}
	if profile.Availability, err = s.users.GetAvailability(ctx, userID); err != nil {
		return nil, fmt.Errorf("loading availability for user %s: %w", userID, err)
	}

	return profile, nil
}

// Update applies profile edits. Users can only edit their own profile.
func (s *ProfileService) Update(ctx context.Context, userID string, update ProfileUpdate, requesterID string) (*model.Profile, error) {
	if requesterID == "" {
		return nil, apperror.Unauthorized("must be logged in to edit a profile")
	}
	if requesterID != userID {
		return nil, apperror.Forbidden("you can only edit your own profile")
	}

	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "name cannot be empty")
		}
		profile.Name = name
	}
	if update.Avatar != nil {
		profile.Avatar = strings.TrimSpace(*update.Avatar)
	}
	if update.Location != nil {
		profile.Location = strings.TrimSpace(*update.Location)
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if len(bio) > MaxBioLength {
			return nil, apperror.ValidationFailed("bio",
				fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
		}
		profile.Bio = bio
	}
	if update.WillingToHost != nil {
		profile.WillingToHost = *update.WillingToHost
	}
	if update.MaxTravelDistance != nil {
		if *update.MaxTravelDistance < 0 {
			return nil, apperror.ValidationFailed("maxTravelDistance", "distance cannot be negative")
		}
		profile.MaxTravelDistance = *update.MaxTravelDistance
	}

	if err := s.users.UpdateUser(ctx, profile); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("id", userID))
	return profile, nil
}

// SetAvailability replaces the user's weekly availability. Owner only.
func (s *ProfileService) SetAvailability(ctx context.Context, userID string, slots []model.AvailabilitySlot, requesterID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("must be logged in to set availability")
	}
	if requesterID != userID {
		return apperror.Forbidden("you can only set your own availability")
	}

	for i := range slots {
		slots[i].DayOfWeek = strings.ToLower(strings.TrimSpace(slots[i].DayOfWeek))
		slots[i].TimeSlot = strings.ToLower(strings.TrimSpace(slots[i].TimeSlot))
		if !validDays[slots[i].DayOfWeek] {
			return apperror.ValidationFailed("dayOfWeek",
				fmt.Sprintf("unknown day %q", slots[i].DayOfWeek))
		}
		if !validTimeSlots[slots[i].TimeSlot] {
			return apperror.ValidationFailed("timeSlot",
				fmt.Sprintf("unknown time slot %q", slots[i].TimeSlot))
		}
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return s.users.SetAvailability(ctx, userID, slots)
}

// AddFavoriteGame marks a catalog game as a favorite. Owner only.
func (s *ProfileService) AddFavoriteGame(ctx context.Context, userID, gameID, requesterID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("must be logged in to add a favorite")
	}
	if requesterID != userID {
		return apperror.Forbidden("you can only edit your own favorites")
	}

	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		return err
	}

	return s.users.AddFavoriteGame(ctx, userID, gameID)
}

// RemoveFavoriteGame unmarks a favorite. Owner only; removing a
// non-favorite is a no-op.
func (s *ProfileService) RemoveFavoriteGame(ctx context.Context, userID, gameID, requesterID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("must be logged in to remove a favorite")
	}
	if requesterID != userID {
		return apperror.Forbidden("you can only edit your own favorites")
	}

	return s.users.RemoveFavoriteGame(ctx, userID, gameID)
}
