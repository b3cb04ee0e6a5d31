package service

import (
	"time"

	"dropcore/file-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup defines a function used to periodically cleanup reset
// tokens that expired or were already consumed
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at < ? OR used = ?", time.Now(), true).
				Delete(model.ResetToken{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup reset tokens", zap.Error(err))
			}
		}
	}()
}
