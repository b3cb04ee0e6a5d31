package security_test

import (
	"strings"
	"testing"
	"time"

	"dropcore/file-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTrip(t *testing.T) {
	a := security.New()

	hash, err := a.GenerateFromPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := a.VerifyPasswd("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a := security.New()

	h1, err := a.GenerateFromPassword("same")
	require.NoError(t, err)

	h2, err := a.GenerateFromPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := security.New()

	_, err := a.VerifyPasswd("whatever", "not-a-phc-string")
	assert.Error(t, err)
}

func TestMakeResetToken(t *testing.T) {
	raw, rec, err := security.MakeResetToken("user1", time.Hour)
	require.NoError(t, err)

	assert.Len(t, raw, 64)
	assert.Equal(t, "user1", rec.UserID)
	assert.Equal(t, security.HashToken(raw), rec.TokenHash)
	assert.NotEqual(t, raw, rec.TokenHash)
	assert.False(t, rec.Used)
	assert.WithinDuration(t, time.Now().Add(time.Hour), rec.ExpiresAt, time.Minute)
}
