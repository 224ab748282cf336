package models

import "time"

// DirectoryContact is the server-side row for a directory contact. Deleted
// rows are retained for a retention window before the cleaner purges them.
type DirectoryContact struct {
	// ID is assigned by the directory on create.
	ID string
	// CreatedAt is assigned by the directory on create.
	CreatedAt time.Time
	// FirstName is the given name. May be empty.
	FirstName string
	// LastName is the family name. May be empty.
	LastName string
	// PhoneNumber is stored as entered.
	PhoneNumber string
	// ProfileImageURL points at an image previously stored via upload.
	ProfileImageURL string
}

// StoredImage is an uploaded avatar blob.
type StoredImage struct {
	// ID is assigned by the directory on upload.
	ID string
	// Data holds the raw image bytes.
	Data []byte
	// ContentType is the MIME type reported at upload time.
	ContentType string
	// CreatedAt is the upload time.
	CreatedAt time.Time
}
