// Package engine implements the contact synchronization and reconciliation
// engine: it merges remote directory state into the local cache, keeps avatar
// bytes cached, tracks device address-book presence, and publishes immutable
// contact snapshots to its consumers.
package engine

import (
	"context"

	"github.com/nexoft/contacts/internal/api"
	"github.com/nexoft/contacts/internal/cache"
	"github.com/nexoft/contacts/internal/models"
)

// DirectoryClient is the slice of the remote directory API the engine needs.
type DirectoryClient interface {
	// ListContacts fetches every record in the directory.
	ListContacts(ctx context.Context) ([]api.ContactRecord, error)
	// CreateContact creates a record; the directory assigns id and timestamp.
	CreateContact(ctx context.Context, req api.CreateContactRequest) (api.ContactRecord, error)
	// UpdateContact overwrites the record with the given id.
	UpdateContact(ctx context.Context, id string, req api.UpdateContactRequest) (api.ContactRecord, error)
	// DeleteContact removes the record with the given id.
	DeleteContact(ctx context.Context, id string) error
	// UploadImage stores raw avatar bytes and returns their assigned URL.
	UploadImage(ctx context.Context, image []byte, fileName string) (string, error)
	// FetchImage downloads avatar bytes from an assigned URL.
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// CacheStore is the slice of the local cache the engine needs.
type CacheStore interface {
	FetchAll(ctx context.Context) ([]cache.Entry, error)
	FindByID(ctx context.Context, id string) (*cache.Entry, error)
	Upsert(ctx context.Context, e cache.Entry) error
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string, image []byte) error
	SetDevicePresence(ctx context.Context, id string, present bool) error
}

// entryFromRecord maps a remote record onto a cache entry. Image bytes and
// the device flag are local state and start zeroed.
func entryFromRecord(rec api.ContactRecord) cache.Entry {
	return cache.Entry{
		ID:              rec.ID,
		CreatedAt:       rec.CreatedAt.Time,
		FirstName:       rec.FirstName,
		LastName:        rec.LastName,
		PhoneNumber:     rec.PhoneNumber,
		ProfileImageURL: rec.ProfileImageURL,
	}
}

// contactFromEntry maps a cache entry to the domain contact.
func contactFromEntry(e cache.Entry) models.Contact {
	return models.Contact{
		ID:                e.ID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		PhoneNumber:       e.PhoneNumber,
		ProfileImageURL:   e.ProfileImageURL,
		LocalImage:        e.Image,
		CreatedAt:         e.CreatedAt,
		InDeviceDirectory: e.InDevice,
	}
}
