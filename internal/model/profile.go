package model

import "time"

// Profile represents a registered user account.
//
// PasswordHash is tagged `json:"-"` so it can never leak into an API
// response, no matter which handler marshals the struct.
type Profile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Name              string    `json:"name"`
	Avatar            string    `json:"avatar"`
	Location          string    `json:"location"`
	Bio               string    `json:"bio"`
	Rating            float64   `json:"rating"`
	GamesPlayed       int       `json:"gamesPlayed"`
	WillingToHost     bool      `json:"willingToHost"`
	MaxTravelDistance int       `json:"maxTravelDistance"` // miles
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Populated on profile detail reads only.
	FavoriteGames []Game             `json:"favoriteGames,omitempty"`
	Availability  []AvailabilitySlot `json:"availability,omitempty"`
}

// AvailabilitySlot is one {day, time slot} pair of a user's weekly availability.
type AvailabilitySlot struct {
	DayOfWeek string `json:"dayOfWeek"` // "monday" … "sunday"
	TimeSlot  string `json:"timeSlot"`  // "morning", "afternoon", "evening"
}
