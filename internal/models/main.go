// Package models defines the core data structures shared by the sync engine,
// the local cache and the directory server.
package models

import (
	"strings"
	"time"
)

// Contact is the domain representation of a person, derived from either the
// remote directory or the local cache.
type Contact struct {
	// ID is the identifier assigned by the remote directory. Empty until the
	// first successful create.
	ID string `json:"id"`
	// FirstName is the given name. May be empty.
	FirstName string `json:"firstName"`
	// LastName is the family name. May be empty.
	LastName string `json:"lastName"`
	// PhoneNumber is the raw phone number as entered.
	PhoneNumber string `json:"phoneNumber"`
	// ProfileImageURL is the remote avatar location, if one was uploaded.
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	// LocalImage holds locally cached avatar bytes. Uploaded separately through
	// the image endpoint, never inlined in contact payloads.
	LocalImage []byte `json:"-"`
	// CreatedAt is assigned by the remote directory on create.
	CreatedAt time.Time `json:"createdAt"`
	// InDeviceDirectory reports whether an equivalent entry exists in the
	// device address book.
	InDeviceDirectory bool `json:"inDeviceDirectory"`
}

// FullName returns the display name: first and last name joined and trimmed,
// falling back to the phone number when both names are empty.
func (c Contact) FullName() string {
	full := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if full == "" {
		return c.PhoneNumber
	}
	return full
}

// Equal reports whether two contacts denote the same entity. Identity is
// defined solely by ID; it is the only field stable across the remote and
// local representations.
func (c Contact) Equal(other Contact) bool {
	return c.ID != "" && c.ID == other.ID
}
