package main

import (
	"fmt"
	"strings"
)

// Normalize cleans a raw US phone number into "(AAA) PPP-SSSS" form.
// Everything that isn't a digit is stripped first, then an optional
// leading country code 1 is dropped when stripCountry is set. Anything
// that doesn't end up as exactly ten digits is invalid
func Normalize(raw string, stripCountry bool) (string, bool) {
	var digits strings.Builder

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()

	if stripCountry && len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}

	if len(d) != 10 {
		return "", false
	}

	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:]), true
}

// CleanStats summarizes one normalization run
type CleanStats struct {
	Total   int
	Valid   int
	Invalid int
	Dropped int
}

// CleanLines normalizes every line of input. Blank lines are skipped.
// Invalid numbers are passed through untouched unless dropInvalid is
// set. A max of zero means no limit
func CleanLines(lines []string, stripCountry, dropInvalid bool, max int) ([]string, CleanStats) {
	out := make([]string, 0, len(lines))
	stats := CleanStats{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if max > 0 && stats.Total >= max {
			break
		}

		stats.Total++

		formatted, ok := Normalize(trimmed, stripCountry)
		if ok {
			stats.Valid++
			out = append(out, formatted)
			continue
		}

		stats.Invalid++

		if dropInvalid {
			stats.Dropped++
			continue
		}

		out = append(out, trimmed)
	}

	return out, stats
}
