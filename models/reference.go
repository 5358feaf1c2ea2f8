package models

import (
	"time"

	"github.com/google/uuid"
)

// Reference represents free-form text evidence (notes, reference documents,
// placeholder project text) belonging to a profile token.
type Reference struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
