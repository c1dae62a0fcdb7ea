package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a possible event suggested by a user. Field names form the wire
// contract between the repository and the API.
type Event struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	// OwnerName is a best-effort enrichment resolved at list time; omitted
	// when the lookup fails for the owner.
	OwnerName string `json:"owner_name,omitempty"`
}
