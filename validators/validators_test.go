package validators_test

import (
	"strings"
	"testing"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/testutil"
	"dropcore/file-api/validators"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, validators.EmailValidator("user@example.com"))
	assert.ErrorIs(t, validators.EmailValidator(""), validators.ErrEmailEmpty)
	assert.ErrorIs(t, validators.EmailValidator("not-an-email"), validators.ErrEmailInvalid)
	assert.ErrorIs(t, validators.EmailValidator("user@"), validators.ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, validators.PasswordValidator("secret"))
	assert.Error(t, validators.PasswordValidator("short"))
	assert.Error(t, validators.PasswordValidator(""))
	assert.Error(t, validators.PasswordValidator(strings.Repeat("a", 256)))
}

func TestUploadValidatorRejectsBadDeclaredType(t *testing.T) {
	viper.Set("upload.max_size", int64(10<<20))

	fh := testutil.FileHeader(t, "archive.zip", "application/zip", []byte("PK\x03\x04data"))

	code, err := validators.UploadValidator(fh, nil, "")
	assert.ErrorIs(t, err, validators.ErrFileTypeUnsupported)
	assert.Equal(t, 400, code)
}

func TestUploadValidatorRejectsSpoofedType(t *testing.T) {
	viper.Set("upload.max_size", int64(10<<20))

	// Declares text/plain but carries a zip payload
	fh := testutil.FileHeader(t, "notes.txt", "text/plain", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"))

	code, err := validators.UploadValidator(fh, nil, "")
	assert.ErrorIs(t, err, validators.ErrFileTypeUnsupported)
	assert.Equal(t, 400, code)
}

func TestUploadValidatorRejectsOversize(t *testing.T) {
	viper.Set("upload.max_size", int64(4))

	fh := testutil.FileHeader(t, "big.txt", "text/plain", []byte("way too large"))

	code, err := validators.UploadValidator(fh, nil, "")
	assert.ErrorIs(t, err, validators.ErrFileTooLarge)
	assert.Equal(t, 413, code)

	viper.Set("upload.max_size", int64(10<<20))
}

func TestUploadValidatorQuota(t *testing.T) {
	viper.Set("upload.max_size", int64(10<<20))

	d := testutil.OpenDB(t)

	u := testutil.SeedUser(t, d, "user1", model.RoleUser)
	require.NoError(t, d.Model(u).Updates(map[string]any{
		"storage_used":  int64(900),
		"storage_limit": int64(1000),
	}).Error)

	fh := testutil.FileHeader(t, "notes.txt", "text/plain", []byte(strings.Repeat("a", 200)))

	code, err := validators.UploadValidator(fh, d, "user1")
	assert.ErrorIs(t, err, validators.ErrNoSpace)
	assert.Equal(t, 409, code)

	// Zero limit means unlimited
	require.NoError(t, d.Model(u).Update("storage_limit", int64(0)).Error)

	code, err = validators.UploadValidator(fh, d, "user1")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestUploadValidatorAcceptsPlainText(t *testing.T) {
	viper.Set("upload.max_size", int64(10<<20))

	fh := testutil.FileHeader(t, "notes.txt", "text/plain", []byte("just some words"))

	code, err := validators.UploadValidator(fh, nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)
}
