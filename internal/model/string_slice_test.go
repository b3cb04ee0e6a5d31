package model_test

import (
	"testing"

	"dropcore/file-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceRoundTrip(t *testing.T) {
	v, err := model.StringSlice{"work", "2024", "draft"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "work,2024,draft", v)

	var s model.StringSlice
	require.NoError(t, s.Scan(v))
	assert.Equal(t, model.StringSlice{"work", "2024", "draft"}, s)
}

func TestStringSliceEmpty(t *testing.T) {
	v, err := model.StringSlice{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	var s model.StringSlice
	require.NoError(t, s.Scan(""))
	assert.Empty(t, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}

func TestStringSliceRejectsComma(t *testing.T) {
	_, err := model.StringSlice{"a,b"}.Value()
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, model.StringSlice{"a", "b", "c"}, model.ParseTags(" a, b ,c,, "))
	assert.Empty(t, model.ParseTags("  "))
	assert.Empty(t, model.ParseTags(""))
}
