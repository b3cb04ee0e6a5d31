package api

import (
	"errors"
	"net/http"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDelete soft-deletes a file. The payload stays in storage until
// the retention sweep, but the counters are settled right here so the
// user's quota frees up immediately. An already-deleted file is
// indistinguishable from a missing one and the counters are never
// decremented twice
func (a *API) FileDelete(c *gin.Context) {
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

	// The guarded update is what makes this safe under concurrent
	// deletes, only the request that flips the flag settles the ledger
	r := a.DB.Model(model.File{}).
		Where("id = ? AND deleted = ?", f.ID, false).
		Update("deleted", true)
	if r.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		// Lost the race to another delete
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"success":   false,
			"error":     "File not found",
			"requestID": requestID,
		})
		return
	}

	if err := a.Ledger.Adjust(userID, -1, -f.FileSize); err != nil {
		zap.L().Error("Failed to decrement user's used storage", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
	})
}
