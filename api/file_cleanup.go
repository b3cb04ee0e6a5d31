package api

import (
	"net/http"

	"dropcore/file-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileCleanup runs the retention sweep on demand. Admin only, the sweep
// walks every user's soft-deleted files, not just the caller's
func (a *API) FileCleanup(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	res, err := a.Sweeper.Sweep(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Manual retention sweep failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Cleanup finished",
		"purged":     res.Purged,
		"freedBytes": res.FreedBytes,
		"freedSpace": util.FormatBytes(res.FreedBytes),
	})
}
