package model

import "time"

type SessionType string

const (
	SessionLesson   SessionType = "lesson"
	SessionWorkshop SessionType = "workshop"
)

// Session is one run of the drill. Lesson sessions are subdivided into teams
// that each carry their own access code; workshop sessions share a single
// session-level code among individual participants.
type Session struct {
	ID         string      `json:"id" bson:"_id,omitempty"`
	Name       string      `json:"name" bson:"name"`
	Type       SessionType `json:"type" bson:"type"`
	ItemListID string      `json:"itemListId" bson:"itemListId"`
	AccessCode string      `json:"accessCode,omitempty" bson:"accessCode,omitempty"`
	IsActive   bool        `json:"isActive" bson:"isActive"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
}

// SessionContext is what a resolved access code hands to a joining
// participant: the session, its catalog, and the team for lesson codes.
type SessionContext struct {
	Type     SessionType `json:"type"`
	Session  *Session    `json:"session"`
	Team     *Team       `json:"team,omitempty"`
	ItemList *ItemList   `json:"itemList"`
}
