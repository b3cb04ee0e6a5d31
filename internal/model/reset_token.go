package model

import "time"

// ResetToken is a single-use password reset capability. Only the SHA-256
// digest of the issued token is stored
type ResetToken struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index"`
	TokenHash string `gorm:"uniqueIndex"`
	Purpose   string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
