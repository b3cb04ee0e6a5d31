package service

import (
	"context"
	"time"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/storage"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper hard-deletes soft-deleted files once they age past the
// retention window. Counters are not touched here, they were settled
// when the soft-delete was recorded
type Sweeper struct {
	DB    *gorm.DB
	Store storage.Backend
}

func NewSweeper(db *gorm.DB, store storage.Backend) *Sweeper {
	return &Sweeper{DB: db, Store: store}
}

type SweepResult struct {
	Purged     int
	FreedBytes int64
}

// Sweep purges every soft-deleted record whose last update is older
// than the retention window. Each record is purged independently so the
// sweep is safe to interrupt and to run repeatedly. A payload already
// gone from storage is skipped, not an error
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	cutoff := time.Now().AddDate(0, 0, -viper.GetInt("retention.days"))

	var expired []model.File

	err := s.DB.
		Where("deleted = ? AND updated_at < ?", true, cutoff).
		Find(&expired).
		Error
	if err != nil {
		return nil, err
	}

	res := &SweepResult{}

	for _, f := range expired {
		if err := s.Store.Remove(ctx, f.FilePath); err != nil {
			zap.L().Error("Failed to delete payload during sweep", zap.String("key", f.FilePath), zap.Error(err))
			continue
		}

		if err := s.DB.Delete(model.File{}, f.ID).Error; err != nil {
			zap.L().Error("Failed to delete catalog row during sweep", zap.Uint("id", f.ID), zap.Error(err))
			continue
		}

		res.Purged++
		res.FreedBytes += f.FileSize
	}

	return res, nil
}

// AttachSweeper runs the retention sweep periodically in the background
func AttachSweeper(t time.Duration, s *Sweeper) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Retention sweeper attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			res, err := s.Sweep(context.Background())
			if err != nil {
				zap.L().Error("Retention sweep failed", zap.Error(err))
				continue
			}

			if res.Purged > 0 {
				zap.L().Info("Retention sweep finished",
					zap.Int("purged", res.Purged),
					zap.Int64("freed_bytes", res.FreedBytes),
				)
			}
		}
	}()
}
