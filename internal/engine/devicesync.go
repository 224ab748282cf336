package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nexoft/contacts/internal/device"
	"github.com/nexoft/contacts/internal/models"
	"go.uber.org/zap"
)

// startDeviceReconcile kicks off device-directory reconciliation without
// delaying the caller. The work is tracked so Close can join it.
func (o *Orchestrator) startDeviceReconcile() {
	if o.dir == nil {
		return
	}
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		// Deliberately detached from the triggering operation's context:
		// the flags should still land if the caller returns first.
		o.reconcileDevice(context.Background())
	}()
}

// reconcileDevice recomputes the device-presence flag for every cached
// contact against one snapshot of the device address book, persists the
// flags that changed, and republishes the cache exactly once if anything
// did. Permission denial and directory failures degrade to "no changes".
func (o *Orchestrator) reconcileDevice(ctx context.Context) {
	granted, err := o.dir.RequestAccess(ctx)
	if err != nil {
		o.log.Warn("address book access failed", zap.Error(err))
		return
	}
	if !granted {
		o.log.Info("address book access denied")
		return
	}

	entries, err := o.dir.Fetch(ctx)
	if err != nil {
		o.log.Warn("address book fetch failed", zap.Error(err))
		return
	}

	contacts, err := o.store.FetchAll(ctx)
	if err != nil {
		o.log.Warn("cache read failed during device reconcile", zap.Error(err))
		return
	}

	var (
		wg      sync.WaitGroup
		changed atomic.Int64
	)
	for _, c := range contacts {
		present := matchAny(entries, c.FirstName, c.LastName, c.PhoneNumber)
		if present == c.InDevice {
			continue
		}
		wg.Add(1)
		go func(id string, present bool) {
			defer wg.Done()
			// The contact may have been deleted since the list was captured;
			// the store treats an unknown id as a no-op.
			if err := o.store.SetDevicePresence(ctx, id, present); err != nil {
				o.log.Warn("presence update failed", zap.String("id", id), zap.Error(err))
				return
			}
			changed.Add(1)
		}(c.ID, present)
	}
	wg.Wait()

	if changed.Load() == 0 {
		return
	}
	if err := o.republish(ctx, false, nil); err != nil {
		o.log.Warn("republish after device reconcile failed", zap.Error(err))
	}
}

// matchAny applies the directory matching rule against the full device list.
func matchAny(entries []device.Entry, firstName, lastName, phoneNumber string) bool {
	for _, e := range entries {
		if e.Matches(firstName, lastName, phoneNumber) {
			return true
		}
	}
	return false
}

// SaveToDevice writes the contact into the device address book on explicit
// user request. The write is fire-and-forget relative to the cache: it never
// mutates cached state and a denial is reported as ErrAccessDenied.
func (o *Orchestrator) SaveToDevice(ctx context.Context, contact models.Contact) error {
	if o.dir == nil {
		return ErrAccessDenied
	}
	granted, err := o.dir.RequestAccess(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrAccessDenied
	}
	return o.dir.Save(ctx, device.Entry{
		GivenName:    contact.FirstName,
		FamilyName:   contact.LastName,
		PhoneNumbers: []string{contact.PhoneNumber},
		Image:        contact.LocalImage,
	})
}
