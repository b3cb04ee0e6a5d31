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

func (a *API) AdminListUsers(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := a.DB.Model(model.User{})

	if search := c.Query("search"); search != "" {
		pat := "%" + search + "%"
		q = q.Where("LOWER(email) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pat, pat)
	}

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	users := make([]model.User, 0, limit)

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

type adminUpdateUserBody struct {
	Role         *string `json:"role"`
	IsActive     *bool   `json:"isActive"`
	StorageLimit *int64  `json:"storageLimit"`
}

func (a *API) AdminUpdateUser(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	adminID := c.MustGet("userID").(string)
	targetID := c.Param("id")

	var data adminUpdateUserBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{}

	if data.Role != nil {
		if *data.Role != model.RoleUser && *data.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "Invalid role",
				"requestID": requestID,
			})
			return
		}

		updates["role"] = *data.Role
	}

	if data.IsActive != nil {
		// Admins locking themselves out is not a supported workflow
		if targetID == adminID && !*data.IsActive {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "You can't deactivate your own account",
				"requestID": requestID,
			})
			return
		}

		updates["is_active"] = *data.IsActive
	}

	if data.StorageLimit != nil {
		if *data.StorageLimit < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "Storage limit can't be negative",
				"requestID": requestID,
			})
			return
		}

		updates["storage_limit"] = *data.StorageLimit
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	r := a.DB.Model(model.User{}).
		Where("id = ?", targetID).
		Updates(updates)
	if r.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"success":   false,
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	user, err := fetchUser(a.DB, targetID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    userData(user),
	})
}

// AdminDeleteUser removes a user and everything they own, payloads
// included. There's no retention window here, this is the hard path
func (a *API) AdminDeleteUser(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	adminID := c.MustGet("userID").(string)
	targetID := c.Param("id")

	if targetID == adminID {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "You can't delete your own account",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := a.DB.Where("id = ?", targetID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Store.RemovePrefix(c.Request.Context(), targetID+"/"); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to delete user's files from storage",
			"requestID": requestID,
		})

		zap.L().Error("Failed to purge user payloads", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", targetID).Delete(model.File{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", targetID).Delete(model.ResetToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(model.User{}, "id = ?", targetID).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	zap.L().Info("User deleted by admin",
		zap.String("target", targetID),
		zap.String("admin", adminID),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}
