package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Client talks to the contact directory API. All methods send the configured
// ApiKey header and honor the passed context for cancellation and deadlines.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// NewClient builds a directory client for the given base URL and API key.
// httpClient may be nil, in which case http.DefaultClient is used.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: httpClient, log: log}
}

// ListContacts fetches every contact in the directory.
// GET /api/User/GetAll
func (c *Client) ListContacts(ctx context.Context) ([]ContactRecord, error) {
	var out contactListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/User/GetAll", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data.Users, nil
}

// GetContact fetches a single contact by its directory identifier.
// GET /api/User/{id}
func (c *Client) GetContact(ctx context.Context, id string) (ContactRecord, error) {
	var out contactEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/User/"+url.PathEscape(id), nil, "", &out); err != nil {
		return ContactRecord{}, err
	}
	return out.Data, nil
}

// CreateContact creates a new directory record. The directory assigns the
// identifier and creation timestamp, returned in the record.
// POST /api/User
func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (ContactRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ContactRecord{}, fmt.Errorf("marshal create request: %w", err)
	}
	var out contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/User", bytes.NewReader(body), "application/json", &out); err != nil {
		return ContactRecord{}, err
	}
	return out.Data, nil
}

// UpdateContact overwrites the directory record with the given identifier.
// PUT /api/User/{id}
func (c *Client) UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (ContactRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ContactRecord{}, fmt.Errorf("marshal update request: %w", err)
	}
	var out contactEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/User/"+url.PathEscape(id), bytes.NewReader(body), "application/json", &out); err != nil {
		return ContactRecord{}, err
	}
	return out.Data, nil
}

// DeleteContact removes the directory record with the given identifier.
// DELETE /api/User/{id}
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	var out emptyEnvelope
	return c.do(ctx, http.MethodDelete, "/api/User/"+url.PathEscape(id), nil, "", &out)
}

// UploadImage sends raw avatar bytes as multipart form data and returns the
// URL the directory assigned to the stored image.
// POST /api/User/UploadImage
func (c *Client) UploadImage(ctx context.Context, image []byte, fileName string) (string, error) {
	if fileName == "" {
		fileName = "profile.jpg"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", fileName)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}

	var out uploadEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/User/UploadImage", &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.Data.ImageURL, nil
}

// FetchImage downloads raw image bytes from an avatar URL previously assigned
// by the directory.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(imageURL), nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("ApiKey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// resolve turns a relative image path into an absolute URL on the directory
// host. Absolute URLs pass through untouched.
func (c *Client) resolve(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil || u.IsAbs() {
		return imageURL
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return imageURL
	}
	return base.ResolveReference(u).String()
}

// do performs one request and decodes the enveloped response into out.
// Any non-2xx status becomes a *ServerError carrying whatever messages could
// be recovered from the body; a body that fails to decode on a 2xx becomes a
// *DecodeError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("ApiKey", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.log.Debug("directory request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrInvalidResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return &ServerError{StatusCode: resp.StatusCode, Messages: env.Messages}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
