package api

import (
	"errors"
	"net/http"
	"strconv"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminListFiles lists files across all users. Soft-deleted records are
// included when ?deleted=true so pending purges can be inspected
func (a *API) AdminListFiles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := a.DB.Model(model.File{})

	if c.Query("deleted") != "true" {
		q = q.Where("deleted = ?", false)
	}

	if uid := c.Query("user"); uid != "" {
		q = q.Where("user_id = ?", uid)
	}

	if search := c.Query("search"); search != "" {
		pat := "%" + search + "%"
		q = q.Where("LOWER(original_name) LIKE LOWER(?) OR user_id = ?", pat, search)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	files := make([]model.File, 0, limit)

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&files).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// AdminDeleteFile hard-deletes a single file, skipping the retention
// window. The owner's counters are only decremented when the record
// wasn't already soft-deleted, a soft-delete settled them already
func (a *API) AdminDeleteFile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"success":   false,
			"error":     "File not found",
			"requestID": requestID,
		})
		return
	}

	var f model.File

	err = a.DB.Where("id = ?", id).First(&f).Error
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

	if err := a.Store.Remove(c.Request.Context(), f.FilePath); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to delete file from storage",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete payload", zap.Error(err), zap.String("key", f.FilePath), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Delete(model.File{}, f.ID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !f.Deleted {
		if err := a.Ledger.Adjust(f.UserID, -1, -f.FileSize); err != nil {
			zap.L().Error("Failed to decrement user's used storage", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
	})
}
