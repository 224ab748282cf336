// Package repository provides persistence implementations for the directory
// service using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nexoft/contacts/internal/models"
)

// PostgresContactRepository implements directory persistence against a
// PostgreSQL database.
type PostgresContactRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresContactRepository creates a repository over the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{DB: db}
}

// List fetches all non-deleted contacts ordered by creation time, newest first.
func (r *PostgresContactRepository) List(ctx context.Context) ([]models.DirectoryContact, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, created_at, first_name, last_name, phone_number, profile_image_url
		  FROM contacts WHERE deleted = false ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var contacts []models.DirectoryContact
	for rows.Next() {
		var c models.DirectoryContact
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName,
			&c.PhoneNumber, &c.ProfileImageURL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Get retrieves a single non-deleted contact by ID. Returns sql.ErrNoRows
// when the contact does not exist.
func (r *PostgresContactRepository) Get(ctx context.Context, id string) (*models.DirectoryContact, error) {
	var c models.DirectoryContact
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, created_at, first_name, last_name, phone_number, profile_image_url
		  FROM contacts WHERE id = $1 AND deleted = false
	`, id).Scan(&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.ProfileImageURL)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new contact row.
func (r *PostgresContactRepository) Create(ctx context.Context, c models.DirectoryContact) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO contacts (id, created_at, first_name, last_name, phone_number, profile_image_url, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, c.ID, c.CreatedAt, c.FirstName, c.LastName, c.PhoneNumber, c.ProfileImageURL)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update overwrites the contact's mutable fields. Returns sql.ErrNoRows when
// no live row matches the ID.
func (r *PostgresContactRepository) Update(ctx context.Context, c models.DirectoryContact) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE contacts
		   SET first_name = $2, last_name = $3, phone_number = $4, profile_image_url = $5
		 WHERE id = $1 AND deleted = false
	`, c.ID, c.FirstName, c.LastName, c.PhoneNumber, c.ProfileImageURL)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks the contact deleted; the cleaner purges it later. Returns
// sql.ErrNoRows when no live row matches the ID.
func (r *PostgresContactRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE contacts SET deleted = true, deleted_at = $2 WHERE id = $1 AND deleted = false
	`, id, at)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SoftDelete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveImage stores an uploaded avatar blob.
func (r *PostgresContactRepository) SaveImage(ctx context.Context, img models.StoredImage) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO images (id, data, content_type, created_at) VALUES ($1, $2, $3, $4)
	`, img.ID, img.Data, img.ContentType, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("SaveImage: %w", err)
	}
	return nil
}

// GetImage fetches a stored avatar blob by ID. Returns sql.ErrNoRows when
// the image does not exist.
func (r *PostgresContactRepository) GetImage(ctx context.Context, id string) (*models.StoredImage, error) {
	var img models.StoredImage
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, data, content_type, created_at FROM images WHERE id = $1
	`, id).Scan(&img.ID, &img.Data, &img.ContentType, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}
