package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CertificateDocument holds the parsed certificate fields (title, issuer,
// date) as returned by the language model. Untrusted, like ProfileDocument.
type CertificateDocument map[string]interface{}

// Value implements driver.Valuer for JSONB
func (d CertificateDocument) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *CertificateDocument) Scan(value interface{}) error {
	if value == nil {
		*d = make(CertificateDocument)
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
		*d = make(CertificateDocument)
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// Certificate represents one parsed certificate belonging to a profile token.
// RawText keeps the extracted source text for traceability and re-parsing.
type Certificate struct {
	ID        uuid.UUID           `json:"id"`
	Token     string              `json:"token"`
	Document  CertificateDocument `json:"document"`
	RawText   string              `json:"raw_text"`
	CreatedAt time.Time           `json:"created_at"`
}
