package util_test

import (
	"testing"

	"dropcore/file-api/pkg/util"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 Bytes", util.FormatBytes(0))
	assert.Equal(t, "512 Bytes", util.FormatBytes(512))
	assert.Equal(t, "1 KB", util.FormatBytes(1024))
	assert.Equal(t, "1.5 KB", util.FormatBytes(1536))
	assert.Equal(t, "1 MB", util.FormatBytes(1<<20))
	assert.Equal(t, "1 GB", util.FormatBytes(1<<30))
	assert.Equal(t, "1 TB", util.FormatBytes(1<<40))
}
