package http

import (
	"net/http"

	"github.com/nexoft/contacts/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler that serves the directory API.
//
// Routes (all behind the ApiKey header check):
//
//	GET    /api/User/GetAll      → ContactHandler.GetAll
//	GET    /api/User/{id}        → ContactHandler.Get
//	POST   /api/User             → ContactHandler.Create
//	PUT    /api/User/{id}        → ContactHandler.Update
//	DELETE /api/User/{id}        → ContactHandler.Delete
//	POST   /api/User/UploadImage → ContactHandler.UploadImage
//	GET    /api/User/Image/{id}  → ContactHandler.Image
//
// Create and Update additionally require Content-Type: application/json;
// UploadImage accepts multipart form data.
func NewRouter(contacts *ContactHandler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api/User", func(r chi.Router) {
		// Enforce the static API key
		r.Use(middleware.WithAPIKey(apiKey))

		r.Get("/GetAll", contacts.GetAll)
		r.Post("/UploadImage", contacts.UploadImage)
		r.Get("/Image/{id}", contacts.Image)

		// Only allow JSON bodies on the record-mutating endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/", contacts.Create)
			r.Put("/{id}", contacts.Update)
		})

		r.Get("/{id}", contacts.Get)
		r.Delete("/{id}", contacts.Delete)
	})

	return r
}
