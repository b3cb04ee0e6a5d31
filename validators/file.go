package validators

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"dropcore/file-api/internal/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("invalid file type, only .txt, .pdf, .jpg, .png, .gif, .doc, .docx allowed")
	ErrNoSpace             = errors.New("not enough storage space")
)

const maxFileNameSize = 255

// AllowedTypes is the upload MIME allow-list
var AllowedTypes = []string{
	"text/plain",
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func typeAllowed(ct string) bool {
	for _, t := range AllowedTypes {
		if ct == t {
			return true
		}
	}

	return false
}

// QuotaValidator checks whether the user has room for size more bytes.
// A limit of zero means unlimited
func QuotaValidator(db *gorm.DB, userID string, size int64) (int, error) {
	var user struct {
		StorageUsed  int64
		StorageLimit int64
	}

	err := db.
		Model(model.User{}).
		Where("id = ?", userID).
		Select("storage_used", "storage_limit").
		First(&user).
		Error
	if err != nil {
		return http.StatusInternalServerError, err
	}

	if user.StorageLimit > 0 && user.StorageUsed+size > user.StorageLimit {
		return http.StatusConflict, ErrNoSpace
	}

	return 0, nil
}

// UploadValidator checks a multipart file against the type allow-list,
// the size limit and the owner's storage quota. Nothing is written to
// storage before this passes. Returns the HTTP status to respond with
// on failure
func UploadValidator(fh *multipart.FileHeader, db *gorm.DB, userID string) (int, error) {
	if fh == nil {
		return http.StatusBadRequest, ErrNoFile
	}

	// Check the declared header first which is easy to spoof, but
	// fast to reject for legit clients
	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !typeAllowed(declared) {
		return http.StatusBadRequest, ErrFileTypeUnsupported
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, ErrFileNameTooLong
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, ErrFileTooLarge
	}

	if db != nil {
		if code, err := QuotaValidator(db, userID, fh.Size); err != nil {
			return code, err
		}
	}

	// And now sniff the actual content to catch malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, err
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	sniffOK := false
	for _, t := range AllowedTypes {
		if detected.Is(t) {
			sniffOK = true
			break
		}
	}

	if !sniffOK {
		return http.StatusBadRequest, ErrFileTypeUnsupported
	}

	return 0, nil
}
