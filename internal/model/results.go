package model

import "time"

// ItemCount is one row of the aggregated results: how many submitted records
// picked the item. Items nobody picked still appear with a zero count.
type ItemCount struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
}

// SessionResults is a full aggregation pass over a session's submissions.
// Ranking is sorted by count descending; ties keep the catalog order.
type SessionResults struct {
	SessionID      string      `json:"sessionId"`
	SubmittedCount int         `json:"submittedCount"`
	TotalCount     int         `json:"totalCount"`
	Ranking        []ItemCount `json:"ranking"`
	ComputedAt     time.Time   `json:"computedAt"`
}
