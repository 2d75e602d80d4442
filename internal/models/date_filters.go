package models

import (
	"strings"
	"time"
)

// ParseDateFilter parses a digest date facet value.
// Supported formats:
// - YYYY-MM-DD
// - MM/DD/YYYY
func ParseDateFilter(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("01/02/2006", value); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// NormalizeDateFilter canonicalizes a date facet to YYYY-MM-DD, the form
// the backend expects
func NormalizeDateFilter(value string) (string, bool) {
	t, ok := ParseDateFilter(value)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
