// Package http provides HTTP handlers for the contact directory API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexoft/contacts/internal/api"
	"github.com/nexoft/contacts/internal/models"
	"github.com/nexoft/contacts/internal/service"
)

// maxImageSize bounds multipart avatar uploads.
const maxImageSize = 10 << 20

// DirectoryService defines the interface for directory operations required
// by the ContactHandler.
type DirectoryService interface {
	List(ctx context.Context) ([]models.DirectoryContact, error)
	Get(ctx context.Context, id string) (*models.DirectoryContact, error)
	Create(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error)
	Update(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error)
	Delete(ctx context.Context, id string) error
	StoreImage(ctx context.Context, data []byte, contentType string) (string, error)
	Image(ctx context.Context, id string) (*models.StoredImage, error)
}

// ContactHandler handles HTTP requests for the directory API.
type ContactHandler struct {
	Service DirectoryService
}

// envelope is the response wrapper every endpoint emits.
type envelope struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages,omitempty"`
	Data     any      `json:"data"`
	Status   int      `json:"status"`
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Status: status})
}

func writeError(w http.ResponseWriter, status int, messages ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false, Messages: messages, Data: struct{}{}, Status: status,
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// recordFrom maps the server-side contact to its wire representation.
func recordFrom(c models.DirectoryContact) api.ContactRecord {
	return api.ContactRecord{
		ID:              c.ID,
		CreatedAt:       api.Timestamp{Time: c.CreatedAt},
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		PhoneNumber:     c.PhoneNumber,
		ProfileImageURL: c.ProfileImageURL,
	}
}

// GetAll handles GET /api/User/GetAll.
func (h *ContactHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	records := make([]api.ContactRecord, 0, len(contacts))
	for _, c := range contacts {
		records = append(records, recordFrom(c))
	}
	writeEnvelope(w, http.StatusOK, map[string]any{"users": records})
}

// Get handles GET /api/User/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, recordFrom(*c))
}

// Create handles POST /api/User.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	created, err := h.Service.Create(r.Context(), models.DirectoryContact{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, recordFrom(*created))
}

// Update handles PUT /api/User/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	updated, err := h.Service.Update(r.Context(), models.DirectoryContact{
		ID:              chi.URLParam(r, "id"),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, recordFrom(*updated))
}

// Delete handles DELETE /api/User/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, struct{}{})
}

// UploadImage handles POST /api/User/UploadImage. It expects multipart form
// data with the avatar bytes in the "image" field and responds with the URL
// assigned to the stored image.
func (h *ContactHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image")
		return
	}

	url, err := h.Service.StoreImage(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]string{"imageUrl": url})
}

// Image handles GET /api/User/Image/{id}, serving previously uploaded bytes.
func (h *ContactHandler) Image(w http.ResponseWriter, r *http.Request) {
	img, err := h.Service.Image(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
