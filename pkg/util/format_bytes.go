package util

import (
	"fmt"
	"math"
)

var byteSizes = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count the way the dashboard displays it,
// two decimals at most with trailing zeros dropped
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	f := float64(n)
	i := 0

	for f >= 1024 && i < len(byteSizes)-1 {
		f /= 1024
		i++
	}

	if i == 0 {
		return fmt.Sprintf("%d Bytes", n)
	}

	rounded := math.Round(f*100) / 100
	return fmt.Sprintf("%v %s", rounded, byteSizes[i])
}
