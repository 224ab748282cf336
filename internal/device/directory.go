// Package device provides access to the device's native address book.
//
// The address book is user-owned: the engine may read it to detect whether a
// contact already exists on the device, and may write an entry on explicit
// user request, but it never owns or reconciles the data there.
package device

import (
	"context"
	"strings"
)

// Entry is one address-book record, restricted to the field set the engine
// needs: names and phone numbers for matching, image bytes for writes.
type Entry struct {
	GivenName    string   `json:"givenName"`
	FamilyName   string   `json:"familyName"`
	PhoneNumbers []string `json:"phoneNumbers"`
	Image        []byte   `json:"image,omitempty"`
}

// Directory is a permission-gated view of the device address book.
type Directory interface {
	// RequestAccess asks for permission to read and write the address book.
	// A denial is reported as (false, nil); it is an expected outcome, not an
	// error.
	RequestAccess(ctx context.Context) (bool, error)
	// Fetch returns every entry with the minimal field set.
	Fetch(ctx context.Context) ([]Entry, error)
	// Save writes a new entry to the address book.
	Save(ctx context.Context, e Entry) error
}

// NormalizePhone strips every non-digit character, so "+1 (555) 123-4567" and
// "5551234567" compare equal.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether this entry denotes the given person. Either an
// exact case-insensitive match on both names or a digit-normalized match on
// any phone number suffices; the two signals are OR-ed, not AND-ed.
func (e Entry) Matches(firstName, lastName, phoneNumber string) bool {
	if strings.EqualFold(e.GivenName, firstName) && strings.EqualFold(e.FamilyName, lastName) {
		return true
	}
	want := NormalizePhone(phoneNumber)
	if want == "" {
		return false
	}
	for _, p := range e.PhoneNumbers {
		if NormalizePhone(p) == want {
			return true
		}
	}
	return false
}
