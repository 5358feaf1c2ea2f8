package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProfileDocument holds the structured CV data exactly as the language model
// returned it. The shape is a prompt-level contract, not something the code
// enforces, so every reader must treat the fields as untrusted and coerce
// them before use.
type ProfileDocument map[string]interface{}

// Value implements driver.Valuer for JSONB
func (d ProfileDocument) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *ProfileDocument) Scan(value interface{}) error {
	if value == nil {
		*d = make(ProfileDocument)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*d = make(ProfileDocument)
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// Profile represents one uploaded CV and its publication state
type Profile struct {
	ID           uuid.UUID          `json:"id"`
	Token        string             `json:"token"`
	UserID       *uuid.UUID         `json:"user_id,omitempty"`
	Document     ProfileDocument    `json:"document"`
	IsPublished  bool               `json:"is_published"`
	ShareEnabled bool               `json:"share_enabled"`
	ShareToken   *string            `json:"share_token,omitempty"`
	Snapshot     *PublishedSnapshot `json:"published_snapshot,omitempty"`
	PublishedAt  *time.Time         `json:"published_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ProfileMeta is the denormalized projection of the person fields, created
// together with the profile. Its summary is editable without re-parsing.
type ProfileMeta struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Summary   string    `json:"summary"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublishedSnapshot is the frozen copy of profile + evidence taken at publish
// time. Live edits after publish do not touch it until the next publish.
type PublishedSnapshot struct {
	Meta            ProfileMeta           `json:"meta"`
	Document        ProfileDocument       `json:"document"`
	Certificates    []CertificateDocument `json:"certificates"`
	AdditionalTexts []string              `json:"additional_texts"`
	TakenAt         time.Time             `json:"taken_at"`
}

// Value implements driver.Valuer for JSONB
func (s PublishedSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *PublishedSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, s)
}
