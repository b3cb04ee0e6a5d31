package api

import (
	"errors"
	"net/http"
	"time"

	"dropcore/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	demoID    = "demo0000000000us"
	demoEmail = "demo@example.com"
)

// AuthDemo logs into a shared demo account, creating it on first use.
// The account has a password nobody knows so the only way in is through
// this endpoint
func (a *API) AuthDemo(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var user model.User

	err := a.DB.Where("email = ?", demoEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, herr := a.Argon.GenerateFromPassword(requestID + demoID)
		if herr != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to hash demo password", zap.Error(herr), zap.String("requestID", requestID))
			return
		}

		user = model.User{
			ID:           demoID,
			Name:         "Demo User",
			Email:        demoEmail,
			PasswordHash: hash,
			Role:         model.RoleUser,
			StorageLimit: viper.GetInt64("storage.default_quota"),
			IsActive:     true,
		}
		err = a.DB.Create(&user).Error
	}

	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to prepare demo account", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	user.LastLogin = &now

	if err := a.DB.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		zap.L().Warn("Failed to record login time", zap.Error(err), zap.String("requestID", requestID))
	}

	token, err := makeToken(&user)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate JWT auth token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Demo login successful",
		"token":   token,
		"user":    userData(&user),
	})
}
