package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringSlice stores an ordered tag list as a single comma-joined column.

type StringSlice []string

// Value implements the driver.Valuer interface. Commas are the join
// separator so no element may contain one
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return "", fmt.Errorf("unsafe string, %s", v)
		}
	}

	return strings.Join(s, ","), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan StringSlice, %v", value)
		}

		str = string(b)
	}

	if str == "" {
		*s = []string{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}

// ParseTags turns comma-separated user input into a trimmed ordered
// sequence, dropping empty entries
func ParseTags(raw string) StringSlice {
	if strings.TrimSpace(raw) == "" {
		return StringSlice{}
	}

	parts := strings.Split(raw, ",")
	tags := make(StringSlice, 0, len(parts))

	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}
