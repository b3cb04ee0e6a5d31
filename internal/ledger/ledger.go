// Package ledger maintains the denormalized per-user storage counters.
// The counters are derived by accumulation: every upload, soft-delete and
// admin removal funnels its delta through Adjust. Recompute exists as the
// explicit reconciliation pass for when the counters drift from the file
// catalog (a mid-sequence crash leaves them out of sync permanently
// otherwise, there is no cross-row transaction).
package ledger

import (
	"dropcore/file-api/internal/model"

	"gorm.io/gorm"
)

type Ledger struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{DB: db}
}

// Usage is a point-in-time snapshot of a user's counters
type Usage struct {
	StorageUsed  int64 `json:"storageUsed"`
	FileCount    int64 `json:"fileCount"`
	StorageLimit int64 `json:"storageLimit"`
}

// Adjust applies signed deltas to a user's file count and used storage.
// The increments run as SQL expressions so concurrent adjustments are
// serialized by the database. No bounds checking happens at this layer
func (l *Ledger) Adjust(userID string, deltaCount, deltaBytes int64) error {
	return l.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"file_count":   gorm.Expr("file_count + ?", deltaCount),
			"storage_used": gorm.Expr("storage_used + ?", deltaBytes),
		}).
		Error
}

// Read returns the current counters for a user
func (l *Ledger) Read(userID string) (*Usage, error) {
	var u Usage

	err := l.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Select("storage_used", "file_count", "storage_limit").
		First(&u).
		Error
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Recompute recalculates a user's counters from the file catalog as
// ground truth and overwrites the accumulated values. Soft-deleted rows
// are excluded, they were settled when the delete was recorded
func (l *Ledger) Recompute(userID string) (*Usage, error) {
	var totals struct {
		Count int64
		Bytes int64
	}

	err := l.DB.
		Model(model.File{}).
		Where("user_id = ? AND deleted = ?", userID, false).
		Select("COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS bytes").
		Scan(&totals).
		Error
	if err != nil {
		return nil, err
	}

	err = l.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"file_count":   totals.Count,
			"storage_used": totals.Bytes,
		}).
		Error
	if err != nil {
		return nil, err
	}

	return l.Read(userID)
}
