package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nexoft/contacts/internal/models"
	"github.com/nexoft/contacts/internal/service"
	"go.uber.org/zap"
)

type mockService struct {
	ListFunc       func(ctx context.Context) ([]models.DirectoryContact, error)
	GetFunc        func(ctx context.Context, id string) (*models.DirectoryContact, error)
	CreateFunc     func(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error)
	UpdateFunc     func(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error)
	DeleteFunc     func(ctx context.Context, id string) error
	StoreImageFunc func(ctx context.Context, data []byte, contentType string) (string, error)
	ImageFunc      func(ctx context.Context, id string) (*models.StoredImage, error)
}

func (m *mockService) List(ctx context.Context) ([]models.DirectoryContact, error) {
	return m.ListFunc(ctx)
}
func (m *mockService) Get(ctx context.Context, id string) (*models.DirectoryContact, error) {
	return m.GetFunc(ctx, id)
}
func (m *mockService) Create(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
	return m.CreateFunc(ctx, c)
}
func (m *mockService) Update(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
	return m.UpdateFunc(ctx, c)
}
func (m *mockService) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockService) StoreImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return m.StoreImageFunc(ctx, data, contentType)
}
func (m *mockService) Image(ctx context.Context, id string) (*models.StoredImage, error) {
	return m.ImageFunc(ctx, id)
}

const testKey = "secret-key"

func newTestServer(t *testing.T, svc *mockService) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(&ContactHandler{Service: svc}, testKey, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("ApiKey", testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

var handlerTime = time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC)

func TestGetAll_WrapsRecordsInUsers(t *testing.T) {
	svc := &mockService{
		ListFunc: func(ctx context.Context) ([]models.DirectoryContact, error) {
			return []models.DirectoryContact{
				{ID: "c1", CreatedAt: handlerTime, FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "111"},
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/User/GetAll", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Users []struct {
				ID        string `json:"id"`
				FirstName string `json:"firstName"`
			} `json:"users"`
		} `json:"data"`
		Status int `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Status != http.StatusOK {
		t.Errorf("unexpected envelope: %+v", body)
	}
	if len(body.Data.Users) != 1 || body.Data.Users[0].FirstName != "Ada" {
		t.Errorf("unexpected users: %+v", body.Data.Users)
	}
}

func TestGetAll_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	resp, err := http.Get(srv.URL + "/api/User/GetAll")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", resp.StatusCode)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockService{
		GetFunc: func(ctx context.Context, id string) (*models.DirectoryContact, error) {
			return nil, service.ErrNotFound
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/User/missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", resp.StatusCode)
	}

	var body struct {
		Success  bool     `json:"success"`
		Messages []string `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || len(body.Messages) == 0 {
		t.Errorf("unexpected envelope: %+v", body)
	}
}

func TestCreate(t *testing.T) {
	svc := &mockService{
		CreateFunc: func(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
			c.ID = "assigned"
			c.CreatedAt = handlerTime
			return &c, nil
		},
	}
	srv := newTestServer(t, svc)

	payload := []byte(`{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"111"}`)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/User", "application/json", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			ID          string `json:"id"`
			PhoneNumber string `json:"phoneNumber"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != "assigned" || body.Data.PhoneNumber != "111" {
		t.Errorf("unexpected record: %+v", body.Data)
	}
}

func TestCreate_RejectsNonJSON(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/User", "text/plain", []byte("not json"))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d; want 415", resp.StatusCode)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/User", "application/json", []byte("{broken"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", resp.StatusCode)
	}
}

func TestUpdate_UsesPathID(t *testing.T) {
	var got models.DirectoryContact
	svc := &mockService{
		UpdateFunc: func(ctx context.Context, c models.DirectoryContact) (*models.DirectoryContact, error) {
			got = c
			c.CreatedAt = handlerTime
			return &c, nil
		},
	}
	srv := newTestServer(t, svc)

	payload := []byte(`{"firstName":"Ada","lastName":"Byron","phoneNumber":"222"}`)
	resp := doRequest(t, http.MethodPut, srv.URL+"/api/User/c1", "application/json", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.ID != "c1" || got.LastName != "Byron" {
		t.Errorf("unexpected update payload: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	var deleted string
	svc := &mockService{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/User/c1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if deleted != "c1" {
		t.Errorf("deleted = %q; want c1", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := &mockService{
		DeleteFunc: func(ctx context.Context, id string) error { return service.ErrNotFound },
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/User/missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d; want 404", resp.StatusCode)
	}
}

func TestUploadImage(t *testing.T) {
	svc := &mockService{
		StoreImageFunc: func(ctx context.Context, data []byte, contentType string) (string, error) {
			if len(data) != 3 {
				t.Errorf("unexpected upload bytes: %v", data)
			}
			return "/api/User/Image/i1", nil
		},
	}
	srv := newTestServer(t, svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "avatar.jpg")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte{0xFF, 0xD8, 0xFF})
	mw.Close()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/User/UploadImage", mw.FormDataContentType(), buf.Bytes())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			ImageURL string `json:"imageUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ImageURL != "/api/User/Image/i1" {
		t.Errorf("imageUrl = %q", body.Data.ImageURL)
	}
}

func TestUploadImage_MissingField(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("not-image", "x")
	mw.Close()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/User/UploadImage", mw.FormDataContentType(), buf.Bytes())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", resp.StatusCode)
	}
}

func TestImage_ServesStoredBytes(t *testing.T) {
	svc := &mockService{
		ImageFunc: func(ctx context.Context, id string) (*models.StoredImage, error) {
			return &models.StoredImage{ID: id, Data: []byte{0xFF, 0xD8}, ContentType: "image/jpeg"}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/User/Image/i1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
}

func TestList_ServiceFailure(t *testing.T) {
	svc := &mockService{
		ListFunc: func(ctx context.Context) ([]models.DirectoryContact, error) {
			return nil, errors.New("db down")
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/User/GetAll", "", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(raw), "db down") {
		t.Errorf("error message not surfaced: %s", raw)
	}
}
