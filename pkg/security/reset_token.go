package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"dropcore/file-api/internal/model"
)

const resetTokenSize = 32

// MakeResetToken returns the raw token handed to the caller and the
// catalog row that stores only its digest. The raw value is never
// persisted
func MakeResetToken(userID string, ttl time.Duration) (string, *model.ResetToken, error) {
	if userID == "" {
		return "", nil, errors.New("no user ID provided")
	}

	b := make([]byte, resetTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", nil, err
	}

	raw := hex.EncodeToString(b)

	return raw, &model.ResetToken{
		UserID:    userID,
		TokenHash: HashToken(raw),
		Purpose:   "password-reset",
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}, nil
}

// HashToken digests a raw reset token for storage or lookup
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
