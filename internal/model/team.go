package model

import "time"

// Team is the shared selection state for one group in a lesson session.
// TeamNumber is dense (1..N) and assigned once at session creation.
type Team struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	SessionID     string     `json:"sessionId" bson:"sessionId"`
	TeamNumber    int        `json:"teamNumber" bson:"teamNumber"`
	AccessCode    string     `json:"accessCode" bson:"accessCode"`
	SelectedItems []string   `json:"selectedItems" bson:"selectedItems"`
	IsSubmitted   bool       `json:"isSubmitted" bson:"isSubmitted"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
}
