// Package api implements the typed HTTP client for the contact directory
// service, including the response envelope and timestamp decoding rules the
// service uses on the wire.
package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp decodes the creation timestamps the directory emits. The service
// is inconsistent about formatting, so three layouts are accepted:
// RFC 3339 with optional fractional seconds, and two zone-less UTC layouts
// with and without milliseconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// UnmarshalJSON parses the timestamp, trying each accepted layout in turn.
// An unparsable value is a decoding failure for the whole response.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format: %q", s)
}

// MarshalJSON emits RFC 3339 with fractional seconds, the directory's
// canonical form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// ContactRecord is the directory's representation of a contact. All string
// fields except ID are optional on the wire and default to empty.
type ContactRecord struct {
	ID              string    `json:"id"`
	CreatedAt       Timestamp `json:"createdAt"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	PhoneNumber     string    `json:"phoneNumber"`
	ProfileImageURL string    `json:"profileImageUrl"`
}

// CreateContactRequest is the payload for POST /api/User.
type CreateContactRequest struct {
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// UpdateContactRequest is the payload for PUT /api/User/{id}. It carries the
// same fields as a create.
type UpdateContactRequest = CreateContactRequest

// envelope is the metadata every directory response carries.
type envelope struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
	Status   int      `json:"status"`
}

type contactEnvelope struct {
	envelope
	Data ContactRecord `json:"data"`
}

type contactListEnvelope struct {
	envelope
	Data struct {
		Users []ContactRecord `json:"users"`
	} `json:"data"`
}

type uploadEnvelope struct {
	envelope
	Data struct {
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

type emptyEnvelope struct {
	envelope
	Data struct{} `json:"data"`
}
