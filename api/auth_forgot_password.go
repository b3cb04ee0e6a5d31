package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

// AuthForgotPassword issues a single-use password reset token. The
// response is the same whether or not the email is registered so the
// endpoint can't be used to probe for accounts. There's no mail
// delivery here, the raw token is returned in the response and handing
// it to the user is the frontend's problem
func (a *API) AuthForgotPassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	accepted := gin.H{
		"success": true,
		"message": "If that email is registered, a reset token has been issued",
	}

	var user model.User

	err := a.DB.Where("email = ?", strings.ToLower(data.Email)).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Error("Failed to look up user for password reset", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusOK, accepted)
		return
	}

	raw, record, err := security.MakeResetToken(user.ID, time.Hour)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Create(record).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	accepted["resetToken"] = raw
	c.JSON(http.StatusOK, accepted)
}
