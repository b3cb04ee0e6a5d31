// Package service contains the upload pipeline and the background
// maintenance jobs
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"

	"dropcore/file-api/internal/ledger"
	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Uploader struct {
	DB     *gorm.DB
	Store  storage.Backend
	Ledger *ledger.Ledger
}

func NewUploader(db *gorm.DB, store storage.Backend, l *ledger.Ledger) *Uploader {
	return &Uploader{DB: db, Store: store, Ledger: l}
}

// Do persists one validated payload and registers it in the catalog.
// The payload write, the catalog insert and the ledger increment are
// three independent steps. A catalog failure rolls the payload back
// best-effort, a ledger failure after the insert leaves the counters
// behind the catalog (accepted drift, settled by a recount)
func (u *Uploader) Do(ctx context.Context, fh *multipart.FileHeader, userID string) (*model.File, error) {
	rec, err := u.saveOne(ctx, fh, userID)
	if err != nil {
		return nil, err
	}

	if err := u.Ledger.Adjust(userID, 1, fh.Size); err != nil {
		return nil, fmt.Errorf("failed to increment user's used storage, %w", err)
	}

	return rec, nil
}

// DoBatch applies the same per-file logic to an ordered sequence of
// payloads and settles the ledger with a single aggregated increment.
// The batch is all-or-nothing: any failure rolls back every payload
// and catalog row written so far
func (u *Uploader) DoBatch(ctx context.Context, fhs []*multipart.FileHeader, userID string) ([]*model.File, error) {
	recs := make([]*model.File, 0, len(fhs))
	var totalSize int64

	for _, fh := range fhs {
		rec, err := u.saveOne(ctx, fh, userID)
		if err != nil {
			u.rollback(ctx, recs)
			return nil, err
		}

		recs = append(recs, rec)
		totalSize += fh.Size
	}

	if err := u.Ledger.Adjust(userID, int64(len(recs)), totalSize); err != nil {
		return nil, fmt.Errorf("failed to increment user's used storage, %w", err)
	}

	return recs, nil
}

func (u *Uploader) saveOne(ctx context.Context, fh *multipart.FileHeader, userID string) (*model.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file, %w", err)
	}
	defer f.Close()

	// A fresh uuid plus the original extension keeps user-supplied
	// names out of storage paths entirely
	name := uuid.NewString() + path.Ext(fh.Filename)
	key := userID + "/" + name

	contentType := fh.Header.Get("Content-Type")

	if err := u.Store.Save(ctx, key, f, fh.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store payload, %w", err)
	}

	rec := &model.File{
		UserID:       userID,
		Filename:     name,
		OriginalName: fh.Filename,
		FileType:     contentType,
		FileSize:     fh.Size,
		FilePath:     key,
		Tags:         model.StringSlice{},
	}

	if err := u.DB.Create(rec).Error; err != nil {
		u.discard(ctx, key)
		return nil, fmt.Errorf("failed to save file record to db, %w", err)
	}

	return rec, nil
}

// rollback undoes the already persisted part of a failed batch
func (u *Uploader) rollback(ctx context.Context, recs []*model.File) {
	for _, rec := range recs {
		u.discard(ctx, rec.FilePath)

		if err := u.DB.Delete(model.File{}, rec.ID).Error; err != nil {
			zap.L().Error("Failed to roll back file record", zap.Uint("id", rec.ID), zap.Error(err))
		}
	}
}

// discard removes an orphaned payload. Best-effort: a failure here is
// logged, not escalated
func (u *Uploader) discard(ctx context.Context, key string) {
	if err := u.Store.Remove(ctx, key); err != nil {
		zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
		return
	}

	zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
}
