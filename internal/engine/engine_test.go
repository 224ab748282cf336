package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/nexoft/contacts/internal/api"
	"github.com/nexoft/contacts/internal/cache"
	"github.com/nexoft/contacts/internal/device"
)

// memStore is an in-memory CacheStore for engine tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry

	// UpsertErr induces a failure for specific ids.
	UpsertErr map[string]error
	// OnFetchAll runs after each FetchAll, with the lock released.
	OnFetchAll func()

	fetchAllCalls int
	attachCalls   int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]cache.Entry)}
}

func (m *memStore) seed(entries ...cache.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

func (m *memStore) FetchAll(ctx context.Context) ([]cache.Entry, error) {
	m.mu.Lock()
	m.fetchAllCalls++
	out := make([]cache.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if m.OnFetchAll != nil {
		m.OnFetchAll()
	}
	return out, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*cache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		copied := e
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) Upsert(ctx context.Context, e cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.UpsertErr[e.ID]; err != nil {
		return err
	}
	if existing, ok := m.entries[e.ID]; ok {
		existing.CreatedAt = e.CreatedAt
		existing.FirstName = e.FirstName
		existing.LastName = e.LastName
		existing.PhoneNumber = e.PhoneNumber
		existing.ProfileImageURL = e.ProfileImageURL
		m.entries[e.ID] = existing
		return nil
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memStore) AttachImage(ctx context.Context, id string, image []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachCalls++
	if e, ok := m.entries[id]; ok {
		e.Image = image
		m.entries[id] = e
	}
	return nil
}

func (m *memStore) SetDevicePresence(ctx context.Context, id string, present bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.InDevice = present
		m.entries[id] = e
	}
	return nil
}

func (m *memStore) get(id string) (cache.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeClient is a function-field DirectoryClient double.
type fakeClient struct {
	ListContactsFunc  func(ctx context.Context) ([]api.ContactRecord, error)
	CreateContactFunc func(ctx context.Context, req api.CreateContactRequest) (api.ContactRecord, error)
	UpdateContactFunc func(ctx context.Context, id string, req api.UpdateContactRequest) (api.ContactRecord, error)
	DeleteContactFunc func(ctx context.Context, id string) error
	UploadImageFunc   func(ctx context.Context, image []byte, fileName string) (string, error)
	FetchImageFunc    func(ctx context.Context, imageURL string) ([]byte, error)
}

func (f *fakeClient) ListContacts(ctx context.Context) ([]api.ContactRecord, error) {
	return f.ListContactsFunc(ctx)
}
func (f *fakeClient) CreateContact(ctx context.Context, req api.CreateContactRequest) (api.ContactRecord, error) {
	return f.CreateContactFunc(ctx, req)
}
func (f *fakeClient) UpdateContact(ctx context.Context, id string, req api.UpdateContactRequest) (api.ContactRecord, error) {
	return f.UpdateContactFunc(ctx, id, req)
}
func (f *fakeClient) DeleteContact(ctx context.Context, id string) error {
	return f.DeleteContactFunc(ctx, id)
}
func (f *fakeClient) UploadImage(ctx context.Context, image []byte, fileName string) (string, error) {
	return f.UploadImageFunc(ctx, image, fileName)
}
func (f *fakeClient) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if f.FetchImageFunc == nil {
		return nil, nil
	}
	return f.FetchImageFunc(ctx, imageURL)
}

// fakeDirectory is a function-field device.Directory double.
type fakeDirectory struct {
	RequestAccessFunc func(ctx context.Context) (bool, error)
	FetchFunc         func(ctx context.Context) ([]device.Entry, error)
	SaveFunc          func(ctx context.Context, e device.Entry) error
}

func (f *fakeDirectory) RequestAccess(ctx context.Context) (bool, error) {
	if f.RequestAccessFunc == nil {
		return true, nil
	}
	return f.RequestAccessFunc(ctx)
}
func (f *fakeDirectory) Fetch(ctx context.Context) ([]device.Entry, error) {
	return f.FetchFunc(ctx)
}
func (f *fakeDirectory) Save(ctx context.Context, e device.Entry) error {
	if f.SaveFunc == nil {
		return nil
	}
	return f.SaveFunc(ctx, e)
}
