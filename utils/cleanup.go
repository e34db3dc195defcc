package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/models"
)

const pruneBatchSize = 500

// PruneEventsBefore deletes analytics events created before cutoff, in
// batches, and returns how many rows went.
func PruneEventsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var total int64
	for {
		var ids []uint
		if err := db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
			Where("created_at < ?", cutoff).
			Order("id ASC").
			Limit(pruneBatchSize).
			Pluck("id", &ids).Error; err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.AnalyticsEvent{})
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		if len(ids) < pruneBatchSize {
			return total, nil
		}
	}
}

// StartEventPruner drops analytics events older than retention every
// interval until ctx is done. Failures are logged and retried next round.
func StartEventPruner(ctx context.Context, db *gorm.DB, retention, interval time.Duration, log *zap.Logger) {
	if retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			cutoff := time.Now().UTC().Add(-retention)
			n, err := PruneEventsBefore(ctx, db, cutoff)
			if err != nil {
				log.Warn("event pruner failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("pruned analytics events", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
			}
		}
	}()
}
