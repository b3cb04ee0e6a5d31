package api

import (
	"fmt"
	"net/http"

	"dropcore/file-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBatchSize = 10

// FileUploadMultiple stores a batch of files as a unit. Every file is
// validated before anything is written, and a failure partway through
// rolls back the payloads already stored so the batch either lands
// whole or not at all
func (a *API) FileUploadMultiple(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Malformed multipart request",
			"requestID": requestID,
		})
		return
	}

	fhs := form.File["files"]
	if len(fhs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "No files provided",
			"requestID": requestID,
		})
		return
	}

	if len(fhs) > maxBatchSize {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     fmt.Sprintf("Too many files, the limit is %d per batch", maxBatchSize),
			"requestID": requestID,
		})
		return
	}

	for _, fh := range fhs {
		if code, err := validators.UploadValidator(fh, a.DB, userID); err != nil {
			c.AbortWithStatusJSON(code, gin.H{
				"success":   false,
				"error":     fmt.Sprintf("%s: %s", fh.Filename, err.Error()),
				"requestID": requestID,
			})
			return
		}
	}

	// The per-file quota check above doesn't see the batch as a whole,
	// so the combined size gets its own pass
	var total int64
	for _, fh := range fhs {
		total += fh.Size
	}

	if code, err := validators.QuotaValidator(a.DB, userID, total); err != nil {
		c.AbortWithStatusJSON(code, gin.H{
			"success":   false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	files, err := a.Uploader.DoBatch(c.Request.Context(), fhs, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to store files",
			"requestID": requestID,
		})

		zap.L().Error("Batch upload failed", zap.Error(err), zap.String("requestID", requestID), zap.String("userID", userID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d files uploaded successfully", len(files)),
		"files":   files,
	})
}
