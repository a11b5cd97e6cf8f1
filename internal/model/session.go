// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"encoding/json"
	"time"
)

// SkillLevel describes the experience level a session is aimed at.
type SkillLevel string

const (
	SkillAllLevels    SkillLevel = "all-levels"
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether the value is one of the known skill levels.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillAllLevels, SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// SessionStatus is the derived open/full state of a session.
type SessionStatus string

const (
	StatusOpen SessionStatus = "open"
	StatusFull SessionStatus = "full"
)

// Session represents a scheduled board-game meetup.
//
// The host is always a member of the attendee set, from creation until the
// session is deleted. Status is NOT a stored field: it is derived from the
// attendee count and capacity on every read, so it can never desynchronize
// from the attendance records.
type Session struct {
	ID                string     `json:"id"`
	GameID            string     `json:"gameId"`
	HostID            string     `json:"hostId"`
	Description       string     `json:"description"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           time.Time  `json:"endTime"`
	Location          string     `json:"location"`
	Address           string     `json:"address"`
	Capacity          int        `json:"capacity"`
	SkillLevel        SkillLevel `json:"skillLevel"`
	MaterialsProvided bool       `json:"materialsProvided"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// AttendeeIDs is always populated on reads, host included.
	AttendeeIDs []string `json:"attendeeIds"`

	// Populated on detail reads only.
	Game      *Game     `json:"game,omitempty"`
	Host      *Profile  `json:"host,omitempty"`
	Attendees []Profile `json:"attendees,omitempty"`
}

// Status derives the open/full state from the attendee count.
// full iff the attendee count has reached capacity.
func (s *Session) Status() SessionStatus {
	if len(s.AttendeeIDs) >= s.Capacity {
		return StatusFull
	}
	return StatusOpen
}

// MarshalJSON includes the derived status alongside the stored fields, so
// API consumers see a "status" key without it ever being persisted.
func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session // alias drops the MarshalJSON method, avoiding recursion
	return json.Marshal(struct {
		alias
		Status SessionStatus `json:"status"`
	}{
		alias:  alias(s),
		Status: s.Status(),
	})
}
