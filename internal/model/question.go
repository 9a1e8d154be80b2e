// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// MaxTextLength is the maximum number of characters (runes, not bytes) allowed in
// a question or an answer. It matches the width of the text columns.
const MaxTextLength = 500

// Question is one question/answer pair known to the chatbot.
//
// The `json:"..."` tags tell encoding/json how to (de)serialize the struct.
// ID and CreatedAt are assigned by the store on creation and never change after that.
//
// WHY OwnerID *int64?
// A question may be created by an admin, by the public /chatbot/add endpoint, or by the
// persist-on-miss chatbot path. Only the first kind has an owner, so the field is
// nullable. It is a weak reference: deleting the admin clears it, the question stays.
type Question struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"questionText"`
	AnswerText   string    `json:"answerText"`
	CreatedAt    time.Time `json:"createdAt"`
	OwnerID      *int64    `json:"ownerId,omitempty"`
}
