package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSoftDeleteCleaner purges soft-deleted contacts older than retention
// with interval. Deletes are soft so a client that cached a contact can still
// resolve its image for a while; the cleaner bounds how long that lasts.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM contacts
                     WHERE deleted = true
                       AND deleted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean soft-deleted contacts", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned soft-deleted contacts", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
