package service_test

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"dropcore/file-api/internal/ledger"
	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/service"
	"dropcore/file-api/internal/storage"
	"dropcore/file-api/internal/testutil"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUploader(t *testing.T) (*service.Uploader, *gorm.DB, storage.Backend) {
	t.Helper()

	d := testutil.OpenDB(t)

	store, err := storage.NewLocal("/uploads", afero.NewMemMapFs())
	require.NoError(t, err)

	return service.NewUploader(d, store, ledger.New(d)), d, store
}

func TestDoStoresPayloadAndRecord(t *testing.T) {
	u, d, store := newUploader(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	fh := testutil.FileHeader(t, "notes.txt", "text/plain", []byte("hello world"))

	rec, err := u.Do(context.Background(), fh, "user1")
	require.NoError(t, err)

	assert.Equal(t, "user1", rec.UserID)
	assert.Equal(t, "notes.txt", rec.OriginalName)
	assert.EqualValues(t, 11, rec.FileSize)
	assert.NotEqual(t, "notes.txt", rec.Filename)

	ok, err := store.Exists(context.Background(), rec.FilePath)
	require.NoError(t, err)
	assert.True(t, ok)

	usage, err := ledger.New(d).Read("user1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, usage.FileCount)
	assert.EqualValues(t, 11, usage.StorageUsed)
}

func TestDoKeepsUserSuppliedNameOutOfKey(t *testing.T) {
	u, d, _ := newUploader(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	fh := testutil.FileHeader(t, "../../etc/passwd.txt", "text/plain", []byte("data"))

	rec, err := u.Do(context.Background(), fh, "user1")
	require.NoError(t, err)

	assert.NotContains(t, rec.FilePath, "..")
	assert.Regexp(t, `^user1/[0-9a-f-]{36}\.txt$`, rec.FilePath)
}

func TestDoBatchHappyPath(t *testing.T) {
	u, d, store := newUploader(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	fhs := []*multipart.FileHeader{
		testutil.FileHeader(t, "a.txt", "text/plain", []byte("aaaa")),
		testutil.FileHeader(t, "b.txt", "text/plain", []byte("bbbbbb")),
	}

	recs, err := u.DoBatch(context.Background(), fhs, "user1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	usage, err := ledger.New(d).Read("user1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, usage.FileCount)
	assert.EqualValues(t, 10, usage.StorageUsed)

	for _, rec := range recs {
		ok, err := store.Exists(context.Background(), rec.FilePath)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

// failingStore rejects saves after a number of successes to drive the
// batch rollback path
type failingStore struct {
	storage.Backend
	allow int
	saved int
}

func (f *failingStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.saved >= f.allow {
		return errors.New("store full")
	}

	f.saved++

	return f.Backend.Save(ctx, key, r, size, contentType)
}

func TestDoBatchRollsBackOnFailure(t *testing.T) {
	d := testutil.OpenDB(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	inner, err := storage.NewLocal("/uploads", afero.NewMemMapFs())
	require.NoError(t, err)

	store := &failingStore{Backend: inner, allow: 1}
	u := service.NewUploader(d, store, ledger.New(d))

	fhs := []*multipart.FileHeader{
		testutil.FileHeader(t, "a.txt", "text/plain", []byte("aaaa")),
		testutil.FileHeader(t, "b.txt", "text/plain", []byte("bbbbbb")),
	}

	_, err = u.DoBatch(context.Background(), fhs, "user1")
	require.Error(t, err)

	// Nothing from the failed batch survives
	var count int64
	require.NoError(t, d.Model(model.File{}).Where("user_id = ?", "user1").Count(&count).Error)
	assert.EqualValues(t, 0, count)

	usage, err := ledger.New(d).Read("user1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, usage.FileCount)
	assert.EqualValues(t, 0, usage.StorageUsed)
}
