package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in    string
		strip bool
		want  string
		ok    bool
	}{
		{"5551234567", true, "(555) 123-4567", true},
		{"555-123-4567", true, "(555) 123-4567", true},
		{"(555) 123 4567", true, "(555) 123-4567", true},
		{"+1 555 123 4567", true, "(555) 123-4567", true},
		{"15551234567", true, "(555) 123-4567", true},
		{"15551234567", false, "", false},
		{"555123456", true, "", false},
		{"55512345678", true, "", false},
		{"", true, "", false},
		{"call me maybe", true, "", false},
	}

	for _, c := range cases {
		got, ok := Normalize(c.in, c.strip)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestCleanLinesPassThrough(t *testing.T) {
	lines := []string{"5551234567", "", "garbage", "  +1 (555) 987-6543  "}

	out, stats := CleanLines(lines, true, false, 0)

	assert.Equal(t, []string{"(555) 123-4567", "garbage", "(555) 987-6543"}, out)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Valid)
	assert.Equal(t, 1, stats.Invalid)
	assert.Equal(t, 0, stats.Dropped)
}

func TestCleanLinesDropInvalid(t *testing.T) {
	lines := []string{"5551234567", "garbage"}

	out, stats := CleanLines(lines, true, true, 0)

	assert.Equal(t, []string{"(555) 123-4567"}, out)
	assert.Equal(t, 1, stats.Dropped)
}

func TestCleanLinesMax(t *testing.T) {
	lines := []string{"5551234567", "5559876543", "5551112222"}

	out, stats := CleanLines(lines, true, false, 2)

	assert.Len(t, out, 2)
	assert.Equal(t, 2, stats.Total)
}
