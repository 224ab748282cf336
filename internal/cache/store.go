// Package cache implements the local persistent contact cache on SQLite.
//
// The cache is the offline copy of the remote directory plus two pieces of
// purely local state: cached avatar bytes and the device-directory presence
// flag. Remote-owned fields are overwritten by reconciliation; the local
// fields survive every sync cycle and change only through explicit calls.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed-width so that lexicographic ordering of the stored
// text matches chronological ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
    id          TEXT PRIMARY KEY,
    created_at  TEXT NOT NULL,
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    phone       TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    image       BLOB,
    in_device   INTEGER NOT NULL DEFAULT 0
);
`

// Entry is a cached contact row.
type Entry struct {
	// ID is the remote-assigned identifier, unique across all entries.
	ID              string
	CreatedAt       time.Time
	FirstName       string
	LastName        string
	PhoneNumber     string
	ProfileImageURL string
	// Image holds locally cached avatar bytes. Never evicted by a sync pass.
	Image []byte
	// InDevice mirrors whether an equivalent entry exists in the device
	// address book.
	InDevice bool
}

// Store is a SQLite-backed contact cache.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the cache database at path.
func New(path string) (*Store, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// Serialize writers; the orchestrator and device reconciliation may
	// touch the cache concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchAll returns every cached contact ordered by creation time, newest first.
func (s *Store) FetchAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, first_name, last_name, phone, image_url, image, in_device
		  FROM contacts ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("FetchAll: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("FetchAll scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindByID returns the cached contact with the given identifier, or nil when
// no such entry exists.
func (s *Store) FindByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, first_name, last_name, phone, image_url, image, in_device
		  FROM contacts WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	return &e, nil
}

// Upsert writes the entry as one committed statement. A new identifier is
// inserted with all fields, including image bytes and the device flag; an
// existing identifier has only its remote-owned fields overwritten, so cached
// image bytes and the device flag are preserved.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("Upsert: entry has no identifier")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, created_at, first_name, last_name, phone, image_url, image, in_device)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			created_at = excluded.created_at,
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			phone      = excluded.phone,
			image_url  = excluded.image_url
	`, e.ID, e.CreatedAt.UTC().Format(createdAtLayout),
		e.FirstName, e.LastName, e.PhoneNumber, e.ProfileImageURL, e.Image, e.InDevice)
	if err != nil {
		return fmt.Errorf("Upsert %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes the entry with the given identifier. Deleting an absent
// identifier is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("Delete %s: %w", id, err)
	}
	return nil
}

// AttachImage replaces the cached avatar bytes for the given identifier.
// A no-op when the identifier no longer exists.
func (s *Store) AttachImage(ctx context.Context, id string, image []byte) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contacts SET image = ? WHERE id = ?`, image, id); err != nil {
		return fmt.Errorf("AttachImage %s: %w", id, err)
	}
	return nil
}

// SetDevicePresence records whether the contact exists in the device address
// book. A no-op when the identifier no longer exists, so a stale device
// reconciliation cannot resurrect a deleted contact.
func (s *Store) SetDevicePresence(ctx context.Context, id string, present bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contacts SET in_device = ? WHERE id = ?`, present, id); err != nil {
		return fmt.Errorf("SetDevicePresence %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e       Entry
		created string
	)
	if err := row.Scan(&e.ID, &created, &e.FirstName, &e.LastName, &e.PhoneNumber,
		&e.ProfileImageURL, &e.Image, &e.InDevice); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	return e, nil
}
