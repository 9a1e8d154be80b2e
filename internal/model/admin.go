// Package model defines the data structures used throughout the application.
package model

import "time"

// Admin represents an administrator allowed to manage questions.
//
// WHY json:"-" ON PasswordHash?
// The hash must never leave the server, not even in admin-only responses.
// The `-` tag makes encoding/json skip the field entirely, so no handler can
// leak it by accident.
//
// There is deliberately no "Questions []Question" field. Owned questions are fetched
// on demand with QuestionRepository.FindByOwner, so serializing an Admin never drags
// an unbounded object graph along with it.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
