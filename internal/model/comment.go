package model

import "time"

// Comment is a discussion entry on a session.
//
// ParentCommentID supports threaded replies at the data level. The API
// serves comments as a flat log ordered by creation time; clients that want
// nesting can reconstruct it from the parent references.
type Comment struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	Text            string    `json:"text"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Author is populated on reads for display composition.
	Author *Profile `json:"user,omitempty"`
}
