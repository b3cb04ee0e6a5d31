package api

import (
	"net/http"
	"time"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userCounts struct {
	Total       int64 `json:"total"`
	Active      int64 `json:"active"`
	NewToday    int64 `json:"newToday"`
	ActiveToday int64 `json:"activeToday"`
}

type topUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	StorageUsed int64  `json:"storageUsed"`
	FileCount   int64  `json:"fileCount"`
}

// AdminStats reports system-wide totals. The response is identical for
// every admin which is why this endpoint sits behind the response cache
func (a *API) AdminStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fail := func(err error, msg string) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var users userCounts

	if err := a.DB.Model(model.User{}).Count(&users.Total).Error; err != nil {
		fail(err, "Failed to count users")
		return
	}

	if err := a.DB.Model(model.User{}).Where("is_active = ?", true).Count(&users.Active).Error; err != nil {
		fail(err, "Failed to count active users")
		return
	}

	if err := a.DB.Model(model.User{}).Where("created_at >= ?", dayStart).Count(&users.NewToday).Error; err != nil {
		fail(err, "Failed to count new users")
		return
	}

	if err := a.DB.Model(model.User{}).Where("last_login >= ?", dayStart).Count(&users.ActiveToday).Error; err != nil {
		fail(err, "Failed to count logins")
		return
	}

	var totals struct {
		Count int64
		Bytes int64
	}

	err := a.DB.Model(model.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS bytes").
		Where("deleted = ?", false).
		Find(&totals).
		Error
	if err != nil {
		fail(err, "Failed to compute file totals")
		return
	}

	var pendingPurge int64
	if err := a.DB.Model(model.File{}).Where("deleted = ?", true).Count(&pendingPurge).Error; err != nil {
		fail(err, "Failed to count soft-deleted files")
		return
	}

	topTypes := make([]typeCount, 0, 10)

	err = a.DB.Model(model.File{}).
		Select("file_type, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS bytes").
		Where("deleted = ?", false).
		Group("file_type").
		Order("count DESC").
		Limit(10).
		Find(&topTypes).
		Error
	if err != nil {
		fail(err, "Failed to compute type distribution")
		return
	}

	topUsers := make([]topUser, 0, 10)

	err = a.DB.Model(model.User{}).
		Select("id, name, email, storage_used, file_count").
		Order("storage_used DESC").
		Limit(10).
		Find(&topUsers).
		Error
	if err != nil {
		fail(err, "Failed to compute top users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"users":                 users,
			"totalFiles":            totals.Count,
			"totalStorage":          totals.Bytes,
			"totalStorageFormatted": util.FormatBytes(totals.Bytes),
			"pendingPurge":          pendingPurge,
			"topTypes":              topTypes,
			"topUsers":              topUsers,
		},
	})
}
