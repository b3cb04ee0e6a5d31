package api

import (
	"net/http"
	"strings"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updateBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (a *API) AuthUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{}

	if data.Name != nil {
		name := strings.TrimSpace(*data.Name)
		if name == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "Name field can't be empty",
				"requestID": requestID,
			})
			return
		}

		updates["name"] = name
	}

	if data.Email != nil {
		if err := validators.EmailValidator(*data.Email); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		email := strings.ToLower(*data.Email)

		var taken bool

		r := a.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id != ?", email, userID).
			Find(&taken)
		if r.Error != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check email availability", zap.Error(r.Error), zap.String("requestID", requestID))
			return
		}

		if taken {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success":   false,
				"error":     "This email is already registered. Please login or use a different email",
				"requestID": requestID,
			})
			return
		}

		updates["email"] = email
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	err := a.DB.Model(model.User{}).
		Where("id = ?", userID).
		Updates(updates).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := fetchUser(a.DB, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userData(user),
	})
}
