package engine

import (
	"context"
	"fmt"

	"github.com/nexoft/contacts/internal/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Reconciler merges batches of remote records into the local cache with
// upsert semantics. The remote directory is authoritative for shared fields;
// locally cached avatar bytes and the device-presence flag are never touched
// by a merge.
type Reconciler struct {
	store  CacheStore
	images *ImageCache
	log    *zap.Logger
}

// NewReconciler builds a Reconciler over the given cache and image cache.
func NewReconciler(store CacheStore, images *ImageCache, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{store: store, images: images, log: log}
}

// Reconcile processes records in the order the directory returned them.
// Records without an identifier are skipped: they cannot be matched or
// persisted. A failure on one record never aborts the rest of the batch;
// per-record errors are accumulated and returned together. If the directory
// ever returns duplicate identifiers in one batch, the last occurrence wins.
func (r *Reconciler) Reconcile(ctx context.Context, records []api.ContactRecord) error {
	var errs error
	for _, rec := range records {
		if rec.ID == "" {
			r.log.Debug("skipping record without identifier",
				zap.String("phone", rec.PhoneNumber))
			continue
		}
		if err := r.reconcileOne(ctx, rec); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", rec.ID, err))
		}
	}
	return errs
}

// reconcileOne upserts a single record as one committed write, then makes a
// best-effort attempt to cache its avatar.
func (r *Reconciler) reconcileOne(ctx context.Context, rec api.ContactRecord) error {
	existing, err := r.store.FindByID(ctx, rec.ID)
	if err != nil {
		return err
	}

	e := entryFromRecord(rec)
	if existing != nil {
		e.Image = existing.Image
		e.InDevice = existing.InDevice
	}
	if err := r.store.Upsert(ctx, e); err != nil {
		return err
	}

	if r.images != nil && r.images.EnsureCached(ctx, &e) {
		if err := r.store.AttachImage(ctx, e.ID, e.Image); err != nil {
			// Avatar persistence is best effort, same as the fetch.
			r.log.Warn("avatar attach failed", zap.String("id", e.ID), zap.Error(err))
		}
	}
	return nil
}
