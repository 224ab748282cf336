// Package service provides business logic for the contact directory,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nexoft/contacts/internal/models"
)

// ErrNotFound is returned when the requested contact or image does not exist.
var ErrNotFound = errors.New("not found")

// ContactRepository defines the persistence operations needed by the
// DirectoryService.
type ContactRepository interface {
	// List fetches all live contacts, newest first.
	List(ctx context.Context) ([]models.DirectoryContact, error)
	// Get retrieves one live contact; sql.ErrNoRows when absent.
	Get(ctx context.Context, id string) (*models.DirectoryContact, error)
	// Create inserts a new contact row.
	Create(ctx context.Context, c models.DirectoryContact) error
	// Update overwrites mutable fields; sql.ErrNoRows when absent.
	Update(ctx context.Context, c models.DirectoryContact) error
	// SoftDelete marks the contact deleted; sql.ErrNoRows when absent.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// SaveImage stores an uploaded avatar blob.
	SaveImage(ctx context.Context, img models.StoredImage) error
	// GetImage fetches a stored blob; sql.ErrNoRows when absent.
	GetImage(ctx context.Context, id string) (*models.StoredImage, error)
}

// DirectoryService implements directory business logic over a repository.
type DirectoryService struct {
	repo ContactRepository
	// now is injectable for tests.
	now func() time.Time
}

// NewDirectoryService constructs a DirectoryService with the provided
// repository.
func NewDirectoryService(repo ContactRepository) *DirectoryService {
	return &DirectoryService{repo: repo, now: time.Now}
}

// List returns every live contact, newest first.
func (s *DirectoryService) List(ctx context.Context) ([]models.DirectoryContact, error) {
	return s.repo.List(ctx)
}

// Get returns the contact with the given id.
func (s *DirectoryService) Get(ctx context.Context, id string) (*models.DirectoryContact, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// Create assigns an identifier and creation timestamp and persists the
// contact. The assigned record is returned.
func (s *DirectoryService) Create(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update overwrites the contact's mutable fields and returns the stored
// record.
func (s *DirectoryService) Update(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	stored, err := s.repo.Get(ctx, c.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return stored, err
}

// Delete soft-deletes the contact; the database cleaner purges it after the
// retention window.
func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	err := s.repo.SoftDelete(ctx, id, s.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// StoreImage persists uploaded avatar bytes and returns the URL path under
// which they can be fetched.
func (s *DirectoryService) StoreImage(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	img := models.StoredImage{
		ID:          uuid.NewString(),
		Data:        data,
		ContentType: contentType,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.SaveImage(ctx, img); err != nil {
		return "", err
	}
	return "/api/User/Image/" + img.ID, nil
}

// Image returns a stored avatar blob.
func (s *DirectoryService) Image(ctx context.Context, id string) (*models.StoredImage, error) {
	img, err := s.repo.GetImage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return img, err
}
