package model

import (
	"time"

	"dropcore/file-api/pkg/util"

	"gorm.io/gorm"
)

type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"index" json:"-"`

	// Since different users may upload files with the same name the
	// payload is stored under a generated name, uuid + original extension
	Filename     string `json:"filename"`
	OriginalName string `json:"name"`
	FileType     string `json:"type"` // Declared MIME type
	FileSize     int64  `json:"size"`

	// Storage backend key, <userID>/<filename>. Never exposed to clients
	FilePath string `json:"-"`

	Description   string      `json:"description"`
	Tags          StringSlice `json:"tags"`
	IsPublic      bool        `json:"isPublic"`
	DownloadCount int64       `json:"downloadCount"`

	// Soft-delete flag. Deleted rows stay invisible to the query surface
	// until the retention sweep hard-deletes them
	Deleted bool `gorm:"default:false;index" json:"-"`

	CreatedAt time.Time `json:"uploadedAt"`
	UpdatedAt time.Time `json:"-"`

	// Derived for responses, never stored
	SizeFormatted string `gorm:"-" json:"sizeFormatted"`
}

func (f *File) AfterFind(*gorm.DB) error {
	f.SizeFormatted = util.FormatBytes(f.FileSize)
	return nil
}

func (f *File) AfterCreate(*gorm.DB) error {
	f.SizeFormatted = util.FormatBytes(f.FileSize)
	return nil
}
