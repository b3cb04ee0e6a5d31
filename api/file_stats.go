package api

import (
	"net/http"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type typeCount struct {
	FileType string `json:"type"`
	Count    int64  `json:"count"`
	Bytes    int64  `json:"bytes"`
}

// FileStats reports the caller's counters straight from the ledger plus
// a per-type breakdown computed from the catalog
func (a *API) FileStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	usage, err := a.Ledger.Read(userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read usage counters", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	byType := make([]typeCount, 0, 8)

	err = a.DB.Model(model.File{}).
		Select("file_type, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS bytes").
		Where("user_id = ? AND deleted = ?", userID, false).
		Group("file_type").
		Find(&byType).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to compute type breakdown", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	recent := make([]model.File, 0, 5)

	err = a.DB.
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC").
		Limit(5).
		Find(&recent).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load recent uploads", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"storageUsed":          usage.StorageUsed,
			"storageUsedFormatted": util.FormatBytes(usage.StorageUsed),
			"fileCount":            usage.FileCount,
			"storageLimit":         usage.StorageLimit,
			"byType":               byType,
			"recentUploads":        recent,
		},
	})
}
