package model

import "time"

// ItemList is a named catalog of selectable items. Exactly one list carries
// the default flag; it is auto-created and never deletable.
type ItemList struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Items     []Item    `json:"items" bson:"items"`
	IsDefault bool      `json:"isDefault" bson:"isDefault"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
