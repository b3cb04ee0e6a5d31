package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fetchOwnedFile loads a live file owned by userID. A file that doesn't
// exist, belongs to someone else or is soft-deleted all look the same
// to the caller
func fetchOwnedFile(d *gorm.DB, userID, rawID string) (*model.File, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var f model.File

	err = d.
		Where("id = ? AND user_id = ? AND deleted = ?", id, userID, false).
		First(&f).
		Error
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (a *API) FileGet(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	f, err := fetchOwnedFile(a.DB, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    f,
	})
}

// FileDownload streams the payload as an attachment under the file's
// original name and bumps the download counter
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	f, err := fetchOwnedFile(a.DB, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// A catalog row whose payload vanished out-of-band reads as missing,
	// the row stays for an operator to investigate
	ok, err := a.Store.Exists(c.Request.Context(), f.FilePath)
	if err == nil && !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"success":   false,
			"error":     "File not found",
			"requestID": requestID,
		})

		zap.L().Warn("Catalog row without payload", zap.Uint("id", f.ID), zap.String("key", f.FilePath))
		return
	}

	body, err := a.Store.Open(c.Request.Context(), f.FilePath)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to read file from storage",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open payload", zap.Error(err), zap.String("key", f.FilePath), zap.String("requestID", requestID))
		return
	}
	defer body.Close()

	err = a.DB.Model(model.File{}).
		Where("id = ?", f.ID).
		Update("download_count", gorm.Expr("download_count + 1")).
		Error
	if err != nil {
		zap.L().Warn("Failed to bump download counter", zap.Error(err), zap.Uint("id", f.ID))
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.OriginalName))
	c.Header("Content-Type", f.FileType)
	c.Header("Content-Length", strconv.FormatInt(f.FileSize, 10))

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		zap.L().Warn("Download aborted mid-stream", zap.Error(err), zap.Uint("id", f.ID))
	}
}
