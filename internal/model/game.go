package model

import "time"

// Game is immutable catalog data: created and edited by catalog maintainers,
// read-only to the rest of the application.
type Game struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MinPlayers int       `json:"minPlayers"`
	MaxPlayers int       `json:"maxPlayers"`
	Tags       []string  `json:"tags"`
	Image      string    `json:"image"` // emoji or icon URL
	CreatedAt  time.Time `json:"createdAt"`
}
