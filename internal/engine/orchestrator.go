package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nexoft/contacts/internal/api"
	"github.com/nexoft/contacts/internal/device"
	"github.com/nexoft/contacts/internal/models"
	"go.uber.org/zap"
)

// Snapshot is one immutable published state of the contact list. Consumers
// receive a complete replacement on every transition; intermediate merge
// states are never observable.
type Snapshot struct {
	// Contacts is the full contact set, newest first.
	Contacts []models.Contact
	// Loading reports whether a load or mutation is still in flight.
	Loading bool
	// Err carries the failure that produced this snapshot, if any. An error
	// never clears an already-published contact set.
	Err error
}

// Orchestrator is the public surface of the sync engine. Each operation
// sequences remote and local work so that a failure in one store never
// corrupts the others, and republishes the cache after every change.
type Orchestrator struct {
	client     DirectoryClient
	store      CacheStore
	dir        device.Directory
	reconciler *Reconciler
	log        *zap.Logger

	mu      sync.Mutex
	current []models.Contact
	updates chan Snapshot

	bg sync.WaitGroup
}

// New wires an Orchestrator from its collaborators. dir may be nil, in which
// case device reconciliation is disabled.
func New(client DirectoryClient, store CacheStore, dir device.Directory, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	images := NewImageCache(client, log)
	return &Orchestrator{
		client:     client,
		store:      store,
		dir:        dir,
		reconciler: NewReconciler(store, images, log),
		log:        log,
		updates:    make(chan Snapshot, 1),
	}
}

// Updates returns the snapshot stream. The channel holds the latest value
// only: a slow consumer observes the most recent state, not every transition.
func (o *Orchestrator) Updates() <-chan Snapshot {
	return o.updates
}

// Contacts returns the currently published contact set.
func (o *Orchestrator) Contacts() []models.Contact {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Contact, len(o.current))
	copy(out, o.current)
	return out
}

// Close waits for background device reconciliation to finish. No new
// operations may be started after Close.
func (o *Orchestrator) Close() {
	o.bg.Wait()
}

// Load publishes the cached contacts immediately, then pulls the remote list,
// reconciles it into the cache and republishes. Device-directory presence is
// refreshed in the background and republished once more when it completes.
// A remote failure surfaces an error without discarding the local snapshot.
func (o *Orchestrator) Load(ctx context.Context) error {
	if err := o.republish(ctx, true, nil); err != nil {
		return fmt.Errorf("load cached contacts: %w", err)
	}

	records, err := o.client.ListContacts(ctx)
	if err != nil {
		o.publishCurrent(false, err)
		return fmt.Errorf("load contacts: %w", err)
	}

	// Per-record failures are isolated; reconcile what it can and surface
	// the rest after republishing.
	recErr := o.reconciler.Reconcile(ctx, records)

	if err := o.republish(ctx, false, recErr); err != nil {
		return fmt.Errorf("reread cache: %w", err)
	}

	o.startDeviceReconcile()

	if recErr != nil {
		return fmt.Errorf("load contacts: %w", recErr)
	}
	return nil
}

// Add uploads the draft's avatar bytes (when present), creates the remote
// record, and persists a cache entry built from the remote response while
// keeping the original local image bytes. A failure at any step leaves no
// partial local entity.
func (o *Orchestrator) Add(ctx context.Context, draft models.Contact) (models.Contact, error) {
	var imageURL string
	if len(draft.LocalImage) > 0 {
		url, err := o.client.UploadImage(ctx, draft.LocalImage, uploadFileName(draft))
		if err != nil {
			o.publishCurrent(false, err)
			return models.Contact{}, fmt.Errorf("upload image: %w", err)
		}
		imageURL = url
	}

	rec, err := o.client.CreateContact(ctx, api.CreateContactRequest{
		FirstName:       draft.FirstName,
		LastName:        draft.LastName,
		PhoneNumber:     draft.PhoneNumber,
		ProfileImageURL: imageURL,
	})
	if err != nil {
		o.publishCurrent(false, err)
		return models.Contact{}, fmt.Errorf("create contact: %w", err)
	}

	e := entryFromRecord(rec)
	// The directory is not assumed to echo a synchronously fetchable URL;
	// keep the bytes the user picked.
	e.Image = draft.LocalImage
	if err := o.store.Upsert(ctx, e); err != nil {
		o.publishCurrent(false, err)
		return models.Contact{}, fmt.Errorf("persist contact: %w", err)
	}

	if err := o.republish(ctx, false, nil); err != nil {
		return models.Contact{}, fmt.Errorf("reread cache: %w", err)
	}
	o.startDeviceReconcile()
	return contactFromEntry(e), nil
}

// Update uploads new avatar bytes only when the contact has none assigned
// remotely yet, pushes the edit to the directory, then overwrites the cached
// entity's remote-owned fields while preserving the device flag and attaching
// the edited image bytes.
func (o *Orchestrator) Update(ctx context.Context, edited models.Contact) (models.Contact, error) {
	if edited.ID == "" {
		return models.Contact{}, fmt.Errorf("update contact: missing identifier")
	}

	imageURL := edited.ProfileImageURL
	if len(edited.LocalImage) > 0 && imageURL == "" {
		url, err := o.client.UploadImage(ctx, edited.LocalImage, uploadFileName(edited))
		if err != nil {
			o.publishCurrent(false, err)
			return models.Contact{}, fmt.Errorf("upload image: %w", err)
		}
		imageURL = url
	}

	rec, err := o.client.UpdateContact(ctx, edited.ID, api.UpdateContactRequest{
		FirstName:       edited.FirstName,
		LastName:        edited.LastName,
		PhoneNumber:     edited.PhoneNumber,
		ProfileImageURL: imageURL,
	})
	if err != nil {
		o.publishCurrent(false, err)
		return models.Contact{}, fmt.Errorf("update contact: %w", err)
	}

	e := entryFromRecord(rec)
	if err := o.store.Upsert(ctx, e); err != nil {
		o.publishCurrent(false, err)
		return models.Contact{}, fmt.Errorf("persist contact: %w", err)
	}
	if len(edited.LocalImage) > 0 {
		// An explicit local edit is the one thing allowed to replace bytes.
		if err := o.store.AttachImage(ctx, e.ID, edited.LocalImage); err != nil {
			o.publishCurrent(false, err)
			return models.Contact{}, fmt.Errorf("persist image: %w", err)
		}
		e.Image = edited.LocalImage
	}

	if err := o.republish(ctx, false, nil); err != nil {
		return models.Contact{}, fmt.Errorf("reread cache: %w", err)
	}
	return contactFromEntry(e), nil
}

// Delete removes the contact remotely first; only on success is the local
// entity deleted and the cache republished.
func (o *Orchestrator) Delete(ctx context.Context, contact models.Contact) error {
	if err := o.client.DeleteContact(ctx, contact.ID); err != nil {
		o.publishCurrent(false, err)
		return fmt.Errorf("delete contact: %w", err)
	}
	if err := o.store.Delete(ctx, contact.ID); err != nil {
		o.publishCurrent(false, err)
		return fmt.Errorf("delete cached contact: %w", err)
	}
	if err := o.republish(ctx, false, nil); err != nil {
		return fmt.Errorf("reread cache: %w", err)
	}
	return nil
}

// Filter returns the contacts whose full name or phone number contains the
// query as a case-insensitive substring. An empty or whitespace-only query
// returns the full current set unmodified.
func (o *Orchestrator) Filter(query string) []models.Contact {
	contacts := o.Contacts()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return contacts
	}

	filtered := contacts[:0]
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.FullName()), q) ||
			strings.Contains(strings.ToLower(c.PhoneNumber), q) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// republish re-reads the cache and publishes a fresh snapshot.
func (o *Orchestrator) republish(ctx context.Context, loading bool, snapErr error) error {
	entries, err := o.store.FetchAll(ctx)
	if err != nil {
		o.publishCurrent(false, err)
		return err
	}
	contacts := make([]models.Contact, 0, len(entries))
	for _, e := range entries {
		contacts = append(contacts, contactFromEntry(e))
	}
	o.publish(Snapshot{Contacts: contacts, Loading: loading, Err: snapErr})
	return nil
}

// publishCurrent re-emits the already-published contact set, typically to
// attach an error without discarding data.
func (o *Orchestrator) publishCurrent(loading bool, err error) {
	o.mu.Lock()
	contacts := o.current
	o.mu.Unlock()
	o.publish(Snapshot{Contacts: contacts, Loading: loading, Err: err})
}

// publish atomically replaces the current set and pushes the snapshot onto
// the latest-value channel. Publishes are serialized by the mutex, so the
// drain-then-send below cannot race with another publisher.
func (o *Orchestrator) publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = s.Contacts
	select {
	case o.updates <- s:
	default:
		select {
		case <-o.updates:
		default:
		}
		o.updates <- s
	}
}

// uploadFileName derives the multipart file name for avatar uploads.
func uploadFileName(c models.Contact) string {
	if c.ID != "" {
		return c.ID + ".jpg"
	}
	return "profile.jpg"
}
