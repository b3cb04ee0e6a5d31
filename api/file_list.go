package api

import (
	"net/http"
	"strconv"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sortable columns, anything else falls back to upload time
var sortColumns = map[string]string{
	"name":       "original_name",
	"size":       "file_size",
	"uploadedAt": "created_at",
	"downloads":  "download_count",
}

// FileList returns the caller's live files, newest first by default.
// Supports ?search= (case-insensitive over name, description and tags),
// ?type= on the exact MIME type, ?sort=&order= and ?page=&limit=
// pagination. The response carries a counters snapshot so the frontend
// doesn't need a second request for the usage bar
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := a.DB.Model(model.File{}).
		Where("user_id = ? AND deleted = ?", userID, false)

	if search := c.Query("search"); search != "" {
		pat := "%" + search + "%"
		q = q.Where(
			"LOWER(original_name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(tags) LIKE LOWER(?)",
			pat, pat, pat,
		)
	}

	if ft := c.Query("type"); ft != "" {
		q = q.Where("file_type = ?", ft)
	}

	col, ok := sortColumns[c.DefaultQuery("sort", "uploadedAt")]
	if !ok {
		col = "created_at"
	}

	dir := "DESC"
	if c.Query("order") == "asc" {
		dir = "ASC"
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

	// Initialized so an empty page serializes as [] and not null
	files := make([]model.File, 0, limit)

	err := q.Order(col + " " + dir).
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

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
		"usage":   usage,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}
