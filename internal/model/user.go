// Package model defines database models
package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:user" json:"role"`

	// Denormalized accounting over the user's non-deleted files.
	// Kept in sync by the ledger, never recalculated on read.
	StorageUsed int64 `json:"storageUsed"`
	FileCount   int64 `json:"fileCount"`

	// Byte ceiling for uploads. Copied from the config default at
	// registration, editable by admins afterwards. 0 means unlimited
	StorageLimit int64 `json:"storageLimit"`

	IsActive  bool       `gorm:"default:true" json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"-"`

	Files       []File       `gorm:"foreignKey:UserID" json:"-"`
	ResetTokens []ResetToken `gorm:"foreignKey:UserID" json:"-"`
}
