package model

import "time"

// Participant is one individual's submission in a workshop session. The
// document is keyed by the anonymous identity subject, so resubmitting
// overwrites rather than duplicates.
type Participant struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	SessionID     string     `json:"sessionId" bson:"sessionId"`
	SelectedItems []string   `json:"selectedItems" bson:"selectedItems"`
	IsSubmitted   bool       `json:"isSubmitted" bson:"isSubmitted"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
}
