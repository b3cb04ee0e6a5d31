package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadOne(t *testing.T, a *testAPI, token, name, content string) map[string]any {
	t.Helper()

	w := a.upload("/api/files/upload", token, "file", map[string]string{name: content})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	return parse(t, w)["file"].(map[string]any)
}

func TestUploadListDownloadDeleteLifecycle(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.register("alice@example.com", "secret123")

	content := strings.Repeat("a", 1024)
	file := uploadOne(t, a, token, "notes.txt", content)
	fileID := fmt.Sprintf("%v", file["id"])

	// Upload settles the counters
	w := a.json(http.MethodGet, "/api/files/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := parse(t, w)["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["fileCount"])
	assert.EqualValues(t, 1024, stats["storageUsed"])

	w = a.json(http.MethodGet, "/api/files", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parse(t, w)["files"], 1)

	// Download round-trips the payload and bumps the counter
	w = a.json(http.MethodGet, "/api/files/download/"+fileID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")

	w = a.json(http.MethodGet, "/api/files/"+fileID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parse(t, w)["file"].(map[string]any)["downloadCount"])

	// Soft-delete frees the quota immediately
	w = a.json(http.MethodDelete, "/api/files/"+fileID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.json(http.MethodGet, "/api/files", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parse(t, w)["files"], 0)

	w = a.json(http.MethodGet, "/api/files/stats", token, nil)
	stats = parse(t, w)["stats"].(map[string]any)
	assert.EqualValues(t, 0, stats["fileCount"])
	assert.EqualValues(t, 0, stats["storageUsed"])

	// The payload waits out the retention window in storage
	var rec model.File
	require.NoError(t, a.DB.Where("user_id = ?", userID).First(&rec).Error)

	ok, err := a.Store.Exists(context.Background(), rec.FilePath)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.register("alice@example.com", "secret123")

	file := uploadOne(t, a, token, "notes.txt", "data")
	fileID := fmt.Sprintf("%v", file["id"])

	w := a.json(http.MethodDelete, "/api/files/"+fileID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A second delete sees the same 404 a missing file would
	w = a.json(http.MethodDelete, "/api/files/"+fileID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// The counters were only settled once
	var user model.User
	require.NoError(t, a.DB.Where("id = ?", userID).First(&user).Error)
	assert.EqualValues(t, 0, user.FileCount)
	assert.EqualValues(t, 0, user.StorageUsed)
}

func TestOwnershipIsolation(t *testing.T) {
	a := newTestAPI(t)
	aliceToken, _ := a.register("alice@example.com", "secret123")
	bobToken, _ := a.register("bob@example.com", "secret123")

	file := uploadOne(t, a, aliceToken, "private.txt", "secret data")
	fileID := fmt.Sprintf("%v", file["id"])

	// Bob can't see, fetch, download, edit or delete Alice's file
	w := a.json(http.MethodGet, "/api/files", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parse(t, w)["files"], 0)

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/files/" + fileID},
		{http.MethodGet, "/api/files/download/" + fileID},
		{http.MethodDelete, "/api/files/" + fileID},
	} {
		w := a.json(probe.method, probe.path, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", probe.method, probe.path)
	}

	w = a.json(http.MethodPut, "/api/files/"+fileID, bobToken, gin.H{"description": "mine now"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register("alice@example.com", "secret123")

	// No file part at all
	w := a.upload("/api/files/upload", token, "file", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Declared zip gets refused before anything is written
	w = a.uploadTyped("/api/files/upload", token, "archive.zip", "application/zip", "PK\x03\x04data")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUploadQuotaEnforced(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.register("alice@example.com", "secret123")

	require.NoError(t, a.DB.Model(model.User{}).
		Where("id = ?", userID).
		Update("storage_limit", int64(100)).
		Error)

	w := a.upload("/api/files/upload", token, "file", map[string]string{
		"big.txt": strings.Repeat("a", 200),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUploadMultiple(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register("alice@example.com", "secret123")

	w := a.upload("/api/files/upload-multiple", token, "files", map[string]string{
		"a.txt": "aaaa",
		"b.txt": "bbbbbb",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Len(t, parse(t, w)["files"], 2)

	w = a.json(http.MethodGet, "/api/files/stats", token, nil)
	stats := parse(t, w)["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["fileCount"])
	assert.EqualValues(t, 10, stats["storageUsed"])
}

func TestUploadMultipleBatchQuota(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.register("alice@example.com", "secret123")

	require.NoError(t, a.DB.Model(model.User{}).
		Where("id = ?", userID).
		Update("storage_limit", int64(10)).
		Error)

	// Each file fits alone but the batch as a whole doesn't
	w := a.upload("/api/files/upload-multiple", token, "files", map[string]string{
		"a.txt": "aaaaaaa",
		"b.txt": "bbbbbbb",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestEditFileMetadata(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register("alice@example.com", "secret123")

	file := uploadOne(t, a, token, "notes.txt", "data")
	fileID := fmt.Sprintf("%v", file["id"])

	w := a.json(http.MethodPut, "/api/files/"+fileID, token, gin.H{
		"description": "meeting notes",
		"tags":        "work, q3 ,drafts",
		"isPublic":    true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.json(http.MethodGet, "/api/files/"+fileID, token, nil)
	got := parse(t, w)["file"].(map[string]any)
	assert.Equal(t, "meeting notes", got["description"])
	assert.Equal(t, []any{"work", "q3", "drafts"}, got["tags"])
	assert.Equal(t, true, got["isPublic"])
}

func TestCleanupPurgesExpiredOnly(t *testing.T) {
	a := newTestAPI(t)
	adminToken, _ := a.registerAdmin("admin@example.com", "secret123")
	token, userID := a.register("alice@example.com", "secret123")

	old := uploadOne(t, a, token, "old.txt", "old data")
	fresh := uploadOne(t, a, token, "fresh.txt", "fresh data")

	oldID := fmt.Sprintf("%v", old["id"])
	freshID := fmt.Sprintf("%v", fresh["id"])

	for _, id := range []string{oldID, freshID} {
		w := a.json(http.MethodDelete, "/api/files/"+id, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Backdate one past the retention window
	require.NoError(t, a.DB.Model(model.File{}).
		Where("id = ?", oldID).
		UpdateColumn("updated_at", time.Now().Add(-31*24*time.Hour)).
		Error)

	w := a.json(http.MethodPost, "/api/files/cleanup", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parse(t, w)["purged"])

	// Running it again finds nothing
	w = a.json(http.MethodPost, "/api/files/cleanup", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, parse(t, w)["purged"])

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCleanupRequiresAdmin(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register("alice@example.com", "secret123")

	w := a.json(http.MethodPost, "/api/files/cleanup", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
