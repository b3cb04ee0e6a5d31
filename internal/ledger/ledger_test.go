package ledger_test

import (
	"testing"

	"dropcore/file-api/internal/ledger"
	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustAccumulates(t *testing.T) {
	d := testutil.OpenDB(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	l := ledger.New(d)

	require.NoError(t, l.Adjust("user1", 1, 1024))
	require.NoError(t, l.Adjust("user1", 2, 2048))

	u, err := l.Read("user1")
	require.NoError(t, err)

	assert.EqualValues(t, 3, u.FileCount)
	assert.EqualValues(t, 3072, u.StorageUsed)
}

func TestAdjustNegativeDeltas(t *testing.T) {
	d := testutil.OpenDB(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	l := ledger.New(d)

	require.NoError(t, l.Adjust("user1", 2, 4096))
	require.NoError(t, l.Adjust("user1", -1, -1024))

	u, err := l.Read("user1")
	require.NoError(t, err)

	assert.EqualValues(t, 1, u.FileCount)
	assert.EqualValues(t, 3072, u.StorageUsed)
}

func TestReadUnknownUser(t *testing.T) {
	d := testutil.OpenDB(t)

	_, err := ledger.New(d).Read("nobody")
	assert.Error(t, err)
}

func TestRecomputeFromCatalog(t *testing.T) {
	d := testutil.OpenDB(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	require.NoError(t, d.Create(&model.File{
		UserID: "user1", Filename: "a.txt", OriginalName: "a.txt",
		FileType: "text/plain", FileSize: 100, FilePath: "user1/a.txt",
	}).Error)
	require.NoError(t, d.Create(&model.File{
		UserID: "user1", Filename: "b.txt", OriginalName: "b.txt",
		FileType: "text/plain", FileSize: 200, FilePath: "user1/b.txt",
	}).Error)
	require.NoError(t, d.Create(&model.File{
		UserID: "user1", Filename: "c.txt", OriginalName: "c.txt",
		FileType: "text/plain", FileSize: 400, FilePath: "user1/c.txt",
		Deleted: true,
	}).Error)

	l := ledger.New(d)

	// Drift the counters on purpose
	require.NoError(t, l.Adjust("user1", 10, 99999))

	u, err := l.Recompute("user1")
	require.NoError(t, err)

	// Soft-deleted rows don't count
	assert.EqualValues(t, 2, u.FileCount)
	assert.EqualValues(t, 300, u.StorageUsed)
}

func TestRecomputeEmptyCatalog(t *testing.T) {
	d := testutil.OpenDB(t)
	testutil.SeedUser(t, d, "user1", model.RoleUser)

	l := ledger.New(d)
	require.NoError(t, l.Adjust("user1", 5, 5000))

	u, err := l.Recompute("user1")
	require.NoError(t, err)

	assert.EqualValues(t, 0, u.FileCount)
	assert.EqualValues(t, 0, u.StorageUsed)
}
