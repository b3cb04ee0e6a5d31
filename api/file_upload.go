package api

import (
	"net/http"

	"dropcore/file-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	if code, err := validators.UploadValidator(fh, a.DB, userID); err != nil {
		c.AbortWithStatusJSON(code, gin.H{
			"success":   false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := a.Uploader.Do(c.Request.Context(), fh, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to store file",
			"requestID": requestID,
		})

		zap.L().Error("Upload failed", zap.Error(err), zap.String("requestID", requestID), zap.String("userID", userID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"file":    f,
	})
}
